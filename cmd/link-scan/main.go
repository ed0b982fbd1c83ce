package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/mail-link-monitor/internal/adapters/browser"
	"github.com/mikey/mail-link-monitor/internal/adapters/mailbox"
	"github.com/mikey/mail-link-monitor/internal/core"
	"github.com/mikey/mail-link-monitor/internal/logging"
)

var (
	keyword   = flag.String("keyword", "", "Keyword to match against subject and body")
	inputFile = flag.String("file", "", "Input email file (use stdin if not specified)")
	openLink  = flag.Bool("open", false, "Open the extracted link in the default browser")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.NewConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *keyword == "" {
		logger.Fatal("a keyword is required, pass -keyword")
	}

	// Read email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	raw, err := io.ReadAll(bufio.NewReader(emailReader))
	if err != nil {
		logger.Fatal("Failed to read email", zap.Error(err))
	}

	msg, err := mailbox.ParseMessage(raw, logger)
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	// Print message summary
	fmt.Printf("\n=== Message Summary ===\n")
	fmt.Printf("From: %s\n", msg.From)
	fmt.Printf("Subject: %s\n", msg.Subject)
	fmt.Printf("Body parts: %d\n", len(msg.Parts))
	if *verbose {
		for i, part := range msg.Parts {
			preview := part.Text
			if len(preview) > 200 {
				preview = preview[:200] + "..."
			}
			fmt.Printf("\nPart %d (%s):\n%s\n", i+1, part.ContentType, preview)
		}
	}

	// Evaluate the message the way a poll cycle would
	fmt.Printf("\n=== Results ===\n")
	matched := core.MatchesMessage(msg, *keyword)
	fmt.Printf("Keyword %q matched: %t\n", *keyword, matched)

	link, found := core.FirstLink(msg.Parts)
	if found {
		fmt.Printf("First link: %s\n", link)
	} else {
		fmt.Printf("First link: (none)\n")
	}

	if matched && found {
		fmt.Printf("A live monitor would open the link and mark the message read.\n")
	} else if matched {
		fmt.Printf("A live monitor would mark the message read without opening anything.\n")
	} else {
		fmt.Printf("A live monitor would leave this message untouched.\n")
	}

	if *openLink && matched && found {
		opener := browser.NewOpener("", logger)
		if err := opener.OpenURL(context.Background(), link); err != nil {
			logger.Error("Failed to open link", zap.Error(err), zap.String("url", link))
			os.Exit(1)
		}
		fmt.Printf("Opened %s\n", link)
	}
}
