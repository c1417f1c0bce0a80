// Rotor is a credential-rotating gateway for LLM chat requests.
//
// It sits between chat clients and upstream LLM providers, holding a
// pool of provider API keys. Each request is served by the eligible
// credential that has rested longest; a used credential enters a
// cooldown before it can serve again. Transient upstream failures are
// retried on a fixed delay within a bounded attempt budget.
//
// Usage:
//
//	# Start the gateway with default configuration
//	rotor run
//
//	# Start with a custom configuration file
//	rotor run --config /etc/rotor/config.yaml
//
//	# Validate a configuration file
//	rotor validate --config /etc/rotor/config.yaml
//
//	# Manage the credential pool
//	rotor tokens add --provider gemini --secret "AIza..." --cooldown 30s
//	rotor tokens list
//	rotor tokens remove <id>
//
//	# Show version information
//	rotor version
package main

func main() {
	Execute()
}
