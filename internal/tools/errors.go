package tools

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrNotADirectory = errors.New("not a directory")
	ErrIsADirectory  = errors.New("is a directory")
	ErrWrongFileKind = errors.New("wrong file kind")
	ErrTimeout       = errors.New("timed out")
	ErrSpawn         = errors.New("failed to start process")
	ErrDecode        = errors.New("cannot decode as text")
	ErrUnknownTool   = errors.New("unknown tool")
	ErrInvalidArgs   = errors.New("invalid arguments")
)
