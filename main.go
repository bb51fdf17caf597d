package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"
	"golang.org/x/exp/mmap"
	"golang.org/x/sync/errgroup"

	"github.com/jnsgr/degzip"
)

var log = capnslog.NewPackageLogger("github.com/jnsgr/degzip", "main")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	var stdout bool

	cmd := &cobra.Command{
		Use:   "degzip [files...]",
		Short: "Decompress one or more gzip files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				capnslog.SetFormatter(capnslog.NewStringFormatter(os.Stderr))
				capnslog.MustRepoLogger("github.com/jnsgr/degzip").SetGlobalLogLevel(capnslog.DEBUG)
			}
			return decompressAll(args, stdout)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.Flags().BoolVarP(&stdout, "stdout", "c", false, "write decompressed output to stdout instead of alongside each input file")

	return cmd
}

// decompressAll decompresses every path, and the first error (if any) is
// returned once every file has finished. When writing sibling output
// files, each file gets its own goroutine and its own independent decode
// state. When writing to stdout, files are decoded one after another in
// argument order so that their outputs are concatenated, not interleaved.
func decompressAll(paths []string, stdout bool) error {
	if stdout {
		var first error
		for _, path := range paths {
			if err := decompressFile(path, true); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	g := new(errgroup.Group)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			return decompressFile(path, stdout)
		})
	}
	return g.Wait()
}

func decompressFile(path string, stdout bool) error {
	ra, err := mmap.Open(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer ra.Close()

	src := io.NewSectionReader(ra, 0, int64(ra.Len()))

	out, cleanup, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	defer cleanup()

	n, err := degzip.DecompressMembers(src, out, func(m degzip.MemberInfo) {
		if len(m.Name) > 0 {
			log.Debugf("%s: member name=%q", path, m.Name)
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("%s: decompressed %d member(s)", path, n)
	return nil
}

func openOutput(path string, stdout bool) (io.Writer, func(), error) {
	if stdout {
		return os.Stdout, func() {}, nil
	}

	dest := strings.TrimSuffix(path, ".gz")
	if dest == path {
		dest += ".out"
	}

	f, err := os.Create(dest)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, func() { f.Close() }, nil
}
