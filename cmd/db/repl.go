package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"tabledb"
)

type statementKind int

const (
	statementInsert statementKind = iota
	statementSelect
)

type statement struct {
	kind statementKind
	row  tabledb.Row
}

var (
	errNegativeID    = errors.New("id must be positive")
	errStringTooLong = errors.New("string too long")
	errSyntax        = errors.New("syntax error")
	errUnrecognized  = errors.New("unrecognized statement")
)

// run drives the REPL until .exit (nil) or a fatal condition (non-nil).
// Recoverable parse and execution errors are printed and the loop
// continues.
func run(db *tabledb.DB, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "db > ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("Error reading input: %v", err)
			}
			return errors.New("Error reading input")
		}
		line := scanner.Text()

		if strings.HasPrefix(line, ".") {
			exit, err := doMetaCommand(db, line, out)
			if err != nil {
				return err
			}
			if exit {
				return nil
			}
			continue
		}

		stmt, err := prepareStatement(line)
		if err != nil {
			fmt.Fprintln(out, prepareMessage(err, line))
			continue
		}

		if err := executeStatement(db, stmt, out); err != nil {
			return err
		}
	}
}

func doMetaCommand(db *tabledb.DB, line string, out io.Writer) (exit bool, err error) {
	switch line {
	case ".exit":
		if err := db.Close(); err != nil {
			return false, err
		}
		return true, nil
	case ".btree":
		fmt.Fprintln(out, "Tree:")
		return false, db.DumpTree(out)
	case ".constants":
		fmt.Fprintln(out, "Constants:")
		printConstants(out)
		return false, nil
	default:
		fmt.Fprintf(out, "Unrecognized command '%s'\n", line)
		return false, nil
	}
}

func prepareStatement(line string) (*statement, error) {
	if strings.HasPrefix(line, "insert") {
		return prepareInsert(line)
	}
	if line == "select" {
		return &statement{kind: statementSelect}, nil
	}
	return nil, errUnrecognized
}

func prepareInsert(line string) (*statement, error) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return nil, errSyntax
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, errSyntax
	}
	if id < 0 {
		return nil, errNegativeID
	}

	username, email := fields[2], fields[3]
	if len(username) > tabledb.UsernameMaxLen {
		return nil, errStringTooLong
	}
	if len(email) > tabledb.EmailMaxLen {
		return nil, errStringTooLong
	}

	return &statement{
		kind: statementInsert,
		row: tabledb.Row{
			ID:       uint32(id),
			Username: username,
			Email:    email,
		},
	}, nil
}

func prepareMessage(err error, line string) string {
	switch {
	case errors.Is(err, errNegativeID):
		return "ID must be positive."
	case errors.Is(err, errStringTooLong):
		return "String is too long."
	case errors.Is(err, errSyntax):
		return "Syntax error. Could not parse statement."
	default:
		return fmt.Sprintf("Unrecognized keyword at start of '%s'.", line)
	}
}

func executeStatement(db *tabledb.DB, stmt *statement, out io.Writer) error {
	switch stmt.kind {
	case statementInsert:
		err := db.Insert(&stmt.row)
		switch {
		case err == nil:
			fmt.Fprintln(out, "Executed.")
		case errors.Is(err, tabledb.ErrDuplicateKey):
			fmt.Fprintln(out, "Error: Duplicate key.")
		default:
			return err
		}

	case statementSelect:
		err := db.Scan(func(row *tabledb.Row) error {
			_, err := fmt.Fprintln(out, row)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Executed.")
	}
	return nil
}

func printConstants(out io.Writer) {
	fmt.Fprintf(out, "ROW_SIZE: %d\n", tabledb.RowSize)
	fmt.Fprintf(out, "COMMON_NODE_HEADER_SIZE: %d\n", tabledb.CommonNodeHeaderSize)
	fmt.Fprintf(out, "LEAF_NODE_HEADER_SIZE: %d\n", tabledb.LeafNodeHeaderSize)
	fmt.Fprintf(out, "LEAF_NODE_CELL_SIZE: %d\n", tabledb.LeafNodeCellSize)
	fmt.Fprintf(out, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", tabledb.LeafNodeSpaceForCells)
	fmt.Fprintf(out, "LEAF_NODE_MAX_CELLS: %d\n", tabledb.LeafNodeMaxCells)
}
