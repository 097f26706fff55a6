package store

import "io"

var errEOF = io.EOF

func isEOF(err error) bool { return err == io.EOF }
