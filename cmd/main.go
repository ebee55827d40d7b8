package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/ifj-project-25/ifj25-sub000/pkg"
)

func main() {
	out := bufio.NewWriter(os.Stdout)

	c := ifj25.NewCompiler()
	cerr := c.Compile(os.Stdin, out)

	if err := out.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(int(ifj25.CategoryInternal))
	}

	if cerr != nil {
		fmt.Fprintln(os.Stderr, cerr)
		os.Exit(int(cerr.Category))
	}

	os.Exit(int(ifj25.CategorySuccess))
}
