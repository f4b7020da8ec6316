package main

import (
	"os"
)

//	@title			MyLittleLibrary API
//	@version		1.0
//	@description	Librarian catalog of books, members and loans.
//	@host			localhost:8080
//	@BasePath		/

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
