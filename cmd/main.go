package main

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	command, args := "embed", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	logger := log.New(os.Stderr, "siteshot: ", log.LstdFlags)

	var err error
	switch command {
	case "embed":
		err = runEmbed(args, logger)
	case "feed":
		err = runFeed(args, logger)
	case "variants":
		err = runVariants(args, logger)
	case "serve":
		err = runServe(args, logger)
	case "watch":
		err = runWatch(args, logger)
	case "version":
		fmt.Printf("siteshot %s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`siteshot - build-time tooling for the portfolio site

Usage:
  siteshot [command] [flags]

Commands:
  embed      Render a social preview image for every blog post (default)
  feed       Write the RSS feed
  variants   Split <variant> blocks in built pages into per-variant pages
  serve      Serve a gallery of the rendered preview images
  watch      Re-render previews and the feed when the content changes
  version    Print the siteshot version
  help       Show this help message

Run "siteshot <command> -h" for the flags of a command.`)
}
