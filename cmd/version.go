package cmd

// version is set via -ldflags at build time.
var version = "(devel)"
