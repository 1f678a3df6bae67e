// Command strata analyzes scene files: body bounds, support surfaces and
// containment, or sample placement points on a table.
package main

func main() {
	Execute()
}
