package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ghostwriterhq/linkedin-ghostwriter/backend/internal/tokenstore"
	"github.com/joho/godotenv"
)

// savetoken stores a LinkedIn access token on disk for headless use of the
// publishing endpoints. Paste a token obtained from the OAuth flow (or the
// developer portal token generator) when prompted, or pass it with -token.
func main() {
	_ = godotenv.Load()

	var (
		token  = flag.String("token", "", "LinkedIn access token (prompted for when empty)")
		hours  = flag.Int("hours", 24, "hours until the stored token is treated as expired")
		path   = flag.String("file", "", "token file path (defaults to LINKEDIN_TOKEN_FILE or "+tokenstore.DefaultFilePath+")")
		silent = flag.Bool("quiet", false, "suppress the confirmation output")
	)
	flag.Parse()

	dest := *path
	if dest == "" {
		dest = os.Getenv("LINKEDIN_TOKEN_FILE")
	}
	if dest == "" {
		dest = tokenstore.DefaultFilePath
	}

	tok := strings.TrimSpace(*token)
	if tok == "" {
		fmt.Print("Paste your LinkedIn access token: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Fatalf("Failed to read token: %v", err)
		}
		tok = strings.TrimSpace(line)
	}
	if tok == "" {
		log.Fatal("No token provided")
	}

	sink := tokenstore.NewFileSink(dest)
	if err := sink.Save(tok, *hours); err != nil {
		log.Fatalf("Failed to save token: %v", err)
	}

	if !*silent {
		fmt.Printf("Token saved to %s (expires in %dh)\n", dest, *hours)
		fmt.Println("The API will pick it up automatically for headless publishing.")
	}
}
