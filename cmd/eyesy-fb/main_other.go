//go:build !linux

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "eyesy-fb: the framebuffer runner needs linux")
	os.Exit(1)
}
