package main

import (
	"fmt"
	"io"

	"github.com/ZanzyTHEbar/retail-tableview/tview/engine"
	"github.com/ZanzyTHEbar/retail-tableview/tview/ports"
)

// console writes reports to stdout and problems to stderr.
type console struct {
	out io.Writer
	err io.Writer
}

var _ ports.Interactor = (*console)(nil)

func newConsole(out, err io.Writer) *console {
	return &console{out: out, err: err}
}

func (c *console) Output(message string) {
	fmt.Fprintln(c.out, message)
}

func (c *console) Warning(message string) {
	fmt.Fprintf(c.err, "Warning: %s\n", message)
}

func (c *console) Error(message string, err error) {
	if err == nil {
		fmt.Fprintf(c.err, "Error: %s\n", message)
		return
	}
	fmt.Fprintf(c.err, "Error: %s: %v\n", message, err)
}

func (c *console) Table(title string, columns []engine.ColumnSpec, w engine.Window) {
	fmt.Fprint(c.out, ports.FormatTable(title, columns, w))
}
