package ports

import "github.com/ZanzyTHEbar/retail-tableview/tview/engine"

// Interactor is the terminal a report is printed to.
type Interactor interface {
	Output(message string)
	Warning(message string)
	Error(message string, err error)
	Table(title string, columns []engine.ColumnSpec, w engine.Window)
}
