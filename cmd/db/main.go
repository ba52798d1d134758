package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"tabledb"
)

func main() {
	verbose := flag.Bool("v", false, "log database internals")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

	var options []tabledb.Option
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Printf("Unable to build logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		options = append(options, tabledb.WithLogger(tabledb.NewZapLogger(logger)))
	}

	db, err := tabledb.Open(flag.Arg(0), options...)
	if err != nil {
		fmt.Printf("Unable to open database: %v\n", err)
		os.Exit(1)
	}

	if err := run(db, os.Stdin, os.Stdout); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
