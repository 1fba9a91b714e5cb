package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Mavwarf/mkicns/internal/config"
	"github.com/Mavwarf/mkicns/internal/paths"
)

func initCmd(args []string, configPath string) {
	for _, a := range args {
		if a == "--defaults" {
			initDefaults(configPath)
			return
		}
	}
	initInteractive(configPath)
}

// initDefaults writes the built-in default config without prompts.
func initDefaults(configPath string) {
	path := resolveInitPath(configPath)
	if err := writeConfig(path, config.Default()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote default config to %s\n", path)
}

// initInteractive asks for the common settings and writes the result.
func initInteractive(configPath string) {
	scanner := bufio.NewScanner(os.Stdin)
	path := resolveInitPath(configPath)

	if _, err := os.Stat(path); err == nil {
		if !promptYN(scanner, fmt.Sprintf("%s already exists. Overwrite?", path), false) {
			fmt.Println("Aborted.")
			return
		}
	}

	fmt.Println("mkicns init - interactive config generator")
	fmt.Println()

	cfg := config.Default()
	cfg.Threshold = promptInt(scanner, "Warn when the image is smaller than (px)", cfg.Threshold)
	cfg.Filter = promptLineDefault(scanner, "Resampling filter", cfg.Filter)
	cfg.Encoder = promptLineDefault(scanner, "Encoder (iconutil, builtin, auto)", cfg.Encoder)
	cfg.Cleanup = promptLineDefault(scanner, "Remove the .iconset folder (always, on-success, never)", cfg.Cleanup)
	cfg.Log = promptYN(scanner, "Keep a run history?", true)
	cfg.Chime = promptYN(scanner, "Play a chime when a run ends?", false)

	if promptYN(scanner, "Publish run summaries over MQTT?", false) {
		cfg.MQTT.Broker = promptLineDefault(scanner, "  Broker", "tcp://localhost:1883")
		cfg.MQTT.Topic = promptLineDefault(scanner, "  Topic", "mkicns/runs")
	}
	if promptYN(scanner, "POST run summaries to a webhook?", false) {
		cfg.Webhook.URL = promptLine(scanner, "  Webhook URL: ")
	}
	fmt.Println()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writeConfig(path, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote config to %s\n", path)
}

// resolveInitPath determines where to write the config file.
func resolveInitPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

// writeConfig marshals cfg and writes it atomically.
func writeConfig(path string, cfg config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return paths.AtomicWrite(path, data)
}

// promptYN asks a yes/no question with a default. Returns true for yes.
func promptYN(scanner *bufio.Scanner, question string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	fmt.Printf("%s %s ", question, hint)
	if !scanner.Scan() {
		return defaultYes
	}
	answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

// promptLine asks a question and returns the trimmed answer.
func promptLine(scanner *bufio.Scanner, question string) string {
	fmt.Print(question)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// promptLineDefault asks a question with a default value shown in brackets.
func promptLineDefault(scanner *bufio.Scanner, question, defaultVal string) string {
	fmt.Printf("%s [%s]: ", question, defaultVal)
	if !scanner.Scan() {
		return defaultVal
	}
	answer := strings.TrimSpace(scanner.Text())
	if answer == "" {
		return defaultVal
	}
	return answer
}

// promptInt is promptLineDefault for integers; bad input keeps the default.
func promptInt(scanner *bufio.Scanner, question string, defaultVal int) int {
	s := promptLineDefault(scanner, question, strconv.Itoa(defaultVal))
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: %q is not a number, keeping %d\n", s, defaultVal)
		return defaultVal
	}
	return n
}
