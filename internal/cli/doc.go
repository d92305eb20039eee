// Package cli provides the grunwald command-line front-end. It handles
// flag parsing, command creation and configuration with cobra and viper,
// and prints the words the storage pipeline publishes.
package cli
