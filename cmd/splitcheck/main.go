// Command splitcheck checks a bill split from the command line.
//
//	splitcheck -total 100 Alice=33.33 Bob=33.33 Charlie=33.34
//	splitcheck -total 10 -even Alice Bob Charlie
//	splitcheck -total 125 -server http://localhost:8080 Alice=60 Bob=65
//
// Exit status is 0 for a balanced split, 1 for an imbalanced one and 2 for
// bad input or a server failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ddublado/slush-bill-splitter/internal/calculator"
	"github.com/ddublado/slush-bill-splitter/internal/client"
	"github.com/ddublado/slush-bill-splitter/internal/models"
	"github.com/ddublado/slush-bill-splitter/internal/money"
)

const (
	exitBalanced   = 0
	exitImbalanced = 1
	exitError      = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("splitcheck", flag.ContinueOnError)
	fs.SetOutput(stderr)
	totalFlag := fs.String("total", "", "bill total, e.g. 125.50")
	even := fs.Bool("even", false, "split the total evenly among the named participants")
	policyFlag := fs.String("policy", string(calculator.DefaultPolicy), "remainder policy for -even: last or spread")
	serverURL := fs.String("server", "", "confirm balanced splits against this server")
	if err := fs.Parse(args); err != nil {
		return exitError
	}

	total, err := money.ParseNumber(*totalFlag)
	if err != nil {
		fmt.Fprintf(stderr, "invalid -total %q: %v\n", *totalFlag, err)
		return exitError
	}

	c := client.New(*serverURL)

	if *even {
		policy, err := calculator.ParsePolicy(*policyFlag)
		if err != nil {
			fmt.Fprintln(stderr, models.PublicMessage(err))
			return exitError
		}
		participants, err := c.SplitEvenly(total, fs.Args(), policy)
		if err != nil {
			fmt.Fprintln(stderr, models.PublicMessage(err))
			return exitError
		}
		printParticipants(stdout, participants)
		return exitBalanced
	}

	participants, err := parseParticipants(fs.Args())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitError
	}

	res, err := c.Validate(ctx, total, participants)
	if err != nil {
		if models.IsInputError(err) {
			fmt.Fprintln(stderr, models.PublicMessage(err))
		} else {
			fmt.Fprintln(stderr, err)
		}
		return exitError
	}

	fmt.Fprintln(stdout, res.Message)
	fmt.Fprintln(stdout, client.Status(res))
	if !res.Success {
		return exitImbalanced
	}
	return exitBalanced
}

// parseParticipants reads name=amount pairs.
func parseParticipants(args []string) ([]models.Participant, error) {
	participants := make([]models.Participant, 0, len(args))
	for _, arg := range args {
		name, amount, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid participant %q: want name=amount", arg)
		}
		d, err := money.ParseNumber(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount for %q: %w", name, err)
		}
		participants = append(participants, models.Participant{Name: name, Amount: d})
	}
	return participants, nil
}

func printParticipants(w io.Writer, participants []models.Participant) {
	for _, p := range participants {
		fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Amount.StringFixed(2))
	}
}
