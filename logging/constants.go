package logging

// Values of the "module" field used by each package's sub-logger
const (
	ENGINE_SERVICE = "engine"
	PARSER_SERVICE = "parser"
	CLI_SERVICE    = "cli"
)
