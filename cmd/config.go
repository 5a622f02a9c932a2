package main

import "time"

type Config struct {
	Host              string        `env:"HOST,default=localhost"`
	Port              int           `env:"PORT,default=8080"`
	LogLevel          string        `env:"LOG_LEVEL,default=info"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	UploadDir         string        `env:"UPLOAD_DIR,default=uploads/multimedia"`
	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES,default=20971520"`
	JWTSecret         string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	SessionBufferSize int           `env:"SESSION_BUFFER_SIZE,default=64"`
	GCInterval        time.Duration `env:"GC_INTERVAL,default=10m"`
	// BridgeRealtime makes the message pipeline broadcast every persisted
	// message to the chat's room. Off by default: persistence and live
	// delivery are independent paths unless explicitly bridged.
	BridgeRealtime bool `env:"BRIDGE_REALTIME,default=false"`
}
