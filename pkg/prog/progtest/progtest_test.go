package progtest

import (
	"os"
	"testing"

	"github.com/spf13/cobra"

	"src.shline.sh/pkg/prog"
)

// Verify we don't deadlock if more output is written to stdout than can be
// buffered by a pipe.
func TestOutputCaptureDoesNotDeadlock(t *testing.T) {
	Test(t, []prog.Subcommand{noisyCommand},
		ThatShline("noisy").WritesStdoutContaining("hello"),
	)
}

func noisyCommand(fds [3]*os.File) *cobra.Command {
	return &cobra.Command{
		Use: "noisy",
		RunE: func(*cobra.Command, []string) error {
			// We need enough data to verify whether we're likely to deadlock
			// due to filling the pipe before the test completes. Pipes
			// typically buffer 8 to 128 KiB.
			bytes := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
			for i := 0; i < 128*1024/len(bytes); i++ {
				fds[1].Write(bytes)
			}
			fds[1].WriteString("hello")
			return nil
		},
	}
}

func TestCapture(t *testing.T) {
	code, stdout, stderr := Capture([]string{"noisy", "extra"}, "", noisyCommand)
	// Cobra accepts arbitrary arguments for a command without Args.
	if code != 0 || stderr != "" || len(stdout) == 0 {
		t.Errorf("Run -> (%d, %d bytes, %q)", code, len(stdout), stderr)
	}
}
