package config

import (
	"errors"

	"github.com/NodePath81/httpbench/internal/probe"
)

var (
	// ErrNoHosts indicates an empty host list after parsing.
	ErrNoHosts = errors.New("no hosts given")
	// ErrInvalidScheme indicates a host without an http:// or https:// prefix.
	ErrInvalidScheme = errors.New("host must start with http:// or https://")
	// ErrInvalidCount is the prober's guard error, reported at load time.
	ErrInvalidCount = probe.ErrInvalidCount
	// ErrFileNotFound indicates a missing hosts file.
	ErrFileNotFound = errors.New("file not found")
	// ErrReadFile indicates a hosts file that could not be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrConflictingHosts indicates both a host list and a hosts file.
	ErrConflictingHosts = errors.New("hosts and hosts file are mutually exclusive")
)
