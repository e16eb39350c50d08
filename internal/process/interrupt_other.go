//go:build !unix

package process

import "os"

// Platforms without SIGINT cannot ask the encoder to finalize its output.
func interrupt(*os.Process) error {
	return nil
}
