package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"lodgeportal/internal/auth"
)

// hashgen prints a bcrypt hash for each password given as an argument,
// ready to paste into the password field of the credentials config.
// With no arguments it reads one password per line from stdin.
func main() {
	passwords := os.Args[1:]
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				passwords = append(passwords, line)
			}
		}
		if err := scanner.Err(); err != nil {
			log.Fatalf("read stdin: %v", err)
		}
	}
	if len(passwords) == 0 {
		fmt.Fprintln(os.Stderr, "usage: hashgen <password> [password...]")
		os.Exit(2)
	}

	for _, password := range passwords {
		hash, err := auth.HashPassword(password)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		fmt.Printf("%s: %s\n", password, hash)
	}
}
