package main

import (
	"fmt"
	"os"

	whcmd "warehouse/cmd"

	"gorm.io/gorm"
)

func main() {
	rootCmd := newRootCmd(connect)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func connect() (whcmd.Config, *gorm.DB, error) {
	cfg, err := whcmd.LoadConfig()
	if err != nil {
		return whcmd.Config{}, nil, err
	}
	db, err := whcmd.OpenDB(cfg)
	if err != nil {
		return whcmd.Config{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return cfg, db, nil
}
