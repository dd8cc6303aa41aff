package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "backledger-cli",
		Short: "BackLedger CLI tool",
		Long:  `A command line interface for interacting with the BackLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BackLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(entityCmd())
	rootCmd.AddCommand(supplierCmd())
	rootCmd.AddCommand(statementCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	showCmd := &cobra.Command{
		Use:   "show [kind] [id]",
		Short: "Show the ledger for a customer or party",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/ledger/%s/%s", args[0], args[1]))
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [kind] [id]",
		Short: "Show the balance summary for a customer or party",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/ledger/%s/%s/summary", args[0], args[1]))
		},
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	cmd.AddCommand(recordCmd())
	cmd.AddCommand(showCmd)
	cmd.AddCommand(summaryCmd)
	cmd.AddCommand(consistencyCmd)
	return cmd
}

func recordCmd() *cobra.Command {
	var (
		kind          string
		entityID      int64
		date          string
		description   string
		reference     string
		txType        string
		amount        string
		paymentMethod string
		notes         string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a ledger transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"entity_type":      kind,
				"entity_id":        entityID,
				"date":             date,
				"description":      description,
				"reference_number": reference,
				"type":             txType,
				"amount":           amount,
				"payment_method":   paymentMethod,
				"notes":            notes,
			}
			return postJSON("/api/v1/ledger", payload)
		},
	}

	cmd.Flags().StringVar(&kind, "entity-type", "customer", "Entity kind (customer or party)")
	cmd.Flags().Int64Var(&entityID, "entity-id", 0, "Entity ID")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "Transaction date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&description, "description", "", "Transaction description")
	cmd.Flags().StringVar(&reference, "reference", "", "Reference number")
	cmd.Flags().StringVar(&txType, "type", "", "Transaction type (sale, payment_received, purchase, payment_sent, adjustment_debit, adjustment_credit)")
	cmd.Flags().StringVar(&amount, "amount", "", "Transaction amount")
	cmd.Flags().StringVar(&paymentMethod, "payment-method", "", "Payment method for payment transactions")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")

	return cmd
}

func entityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Customer and party operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List customers and parties",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("type")
			path := "/api/v1/entities"
			if kind != "" {
				path += "?type=" + kind
			}
			return getJSON(path)
		},
	}
	listCmd.Flags().String("type", "", "Filter by kind (customer or party)")

	getCmd := &cobra.Command{
		Use:   "get [kind] [id]",
		Short: "Show a single customer or party",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/entities/%s/%s", args[0], args[1]))
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(getCmd)
	return cmd
}

func supplierCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "supplier",
		Short: "Supplier settlement views",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Show settlement summaries for all suppliers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/suppliers/summary")
		},
	}

	summaryCmd := &cobra.Command{
		Use:   "summary [id]",
		Short: "Show the settlement summary for one supplier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON(fmt.Sprintf("/api/v1/suppliers/%s/summary", args[0]))
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(summaryCmd)
	return cmd
}

func statementCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "statement [kind] [id]",
		Short: "Download a ledger statement as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return downloadStatement(args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to stdout)")
	return cmd
}

func checkConsistency() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	consistent, _ := result["consistent"].(bool)
	if checked, ok := result["checked"].(float64); ok {
		fmt.Printf("Entities checked: %d\n", int(checked))
	}
	if !consistent {
		fmt.Printf("Consistency check FAILED\n")
		printJSON(result["mismatches"])
		os.Exit(1)
	}
	fmt.Printf("Consistency check PASSED\n")
}

func downloadStatement(kind, id, output string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(fmt.Sprintf("%s/api/v1/ledger/%s/%s/statement.csv", baseURL, kind, id))
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("statement export failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	if output == "" {
		fmt.Print(string(body))
		return nil
	}

	if err := os.WriteFile(output, body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("Statement written to %s (%d bytes)\n", output, len(body))
	return nil
}

func getJSON(path string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func postJSON(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var result any
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	printJSON(result)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
