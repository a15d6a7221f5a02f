package upload

import (
	"strconv"
	"time"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
