// Command buddyrepl is an interactive shell for exercising a binary-buddy
// allocator: allocate, free, and inspect blocks of a single in-process arena.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gotreebud/treebud/pkg/arena"
	"github.com/gotreebud/treebud/pkg/buddy"
	"github.com/gotreebud/treebud/pkg/xerrors"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <arena-size>\n", os.Args[0])
	}
	flag.Parse()

	size, err := arenaSize(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	host := (&arena.Arena{}).Alloc(size)

	al, err := buddy.New(unsafeHost(host, size))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	os.Exit(repl(os.Stdin, os.Stdout, al))
}

func arenaSize(args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("buddyrepl: expected exactly one positional argument (arena size in bytes)")
	}

	size, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("buddyrepl: bad arena size %q: %w", args[0], err)
	}
	if size <= 0 || size&(size-1) != 0 {
		return 0, fmt.Errorf("buddyrepl: arena size %d must be a positive power of two", size)
	}

	return size, nil
}

// repl drives the A/F/P/Q command loop and returns the process exit code.
func repl(in io.Reader, out io.Writer, al *buddy.Allocator) int {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			fmt.Fprint(out, "> ")
			continue
		}

		cmd := strings.ToUpper(line[:1])
		arg := strings.TrimSpace(line[1:])

		switch cmd {
		case "A":
			handleAllocate(out, al, arg)
		case "F":
			handleFree(out, al, arg)
		case "P":
			fmt.Fprintln(out, al.Inspect().String())
		case "Q":
			return 0
		default:
			fmt.Fprintf(out, "unknown command %q (expected A, F, P, or Q)\n", cmd)
		}

		fmt.Fprint(out, "> ")
	}

	return 0
}

func handleAllocate(out io.Writer, al *buddy.Allocator, arg string) {
	size, err := strconv.Atoi(arg)
	if err != nil {
		reportParseError(out, err, arg)
		return
	}

	p := al.Allocate(size)
	if p == nil {
		fmt.Fprintln(out, "out of memory")
		return
	}

	fmt.Fprintf(out, "allocated at %p\n", p)
}

func handleFree(out io.Writer, al *buddy.Allocator, arg string) {
	addr, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 64)
	if err != nil {
		reportParseError(out, err, arg)
		return
	}

	al.Free(addrToPtr(uintptr(addr)))
}

func reportParseError(out io.Writer, err error, arg string) {
	if numErr, ok := xerrors.AsA[*strconv.NumError](err); ok {
		fmt.Fprintf(out, "%q is not a valid number: %v\n", arg, numErr.Err)
		return
	}

	fmt.Fprintf(out, "could not parse %q: %v\n", arg, err)
}
