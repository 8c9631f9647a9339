package utils

// Version is overridden at build time via -ldflags.
var Version = "dev"
