package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"finbook/internal/config"
	"finbook/internal/core"
	applog "finbook/internal/log"
	"finbook/internal/services"
	"finbook/internal/storage"
)

// cli bundles the services behind the interactive menu.
type cli struct {
	in      *bufio.Scanner
	auth    *services.AuthService
	ledger  *services.LedgerService
	budgets *services.BudgetService
	reports *services.ReportService
}

func main() {
	_ = godotenv.Load()

	// Keep the terminal clean; log only warnings and errors.
	logCfg := applog.DefaultConfig()
	logCfg.Handler = nil
	logCfg.Level = slog.LevelWarn
	logger := applog.New(logCfg).WithComponent(applog.ComponentCLI)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	c := &cli{
		in:      bufio.NewScanner(os.Stdin),
		auth:    services.NewAuthService(repo, nil),
		ledger:  services.NewLedgerService(repo, nil),
		budgets: services.NewBudgetService(repo),
		reports: services.NewReportService(repo),
	}
	c.run(context.Background())
}

func (c *cli) prompt(label string) string {
	fmt.Print(label)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *cli) run(ctx context.Context) {
	for {
		switch strings.ToLower(c.prompt("Do you want to (register/login/exit): ")) {
		case "register":
			username := c.prompt("Enter username: ")
			password := c.prompt("Enter password: ")
			user, err := c.auth.Register(ctx, username, password)
			if err != nil {
				fmt.Println("Registration failed:", err)
				continue
			}
			fmt.Printf("User %s registered successfully!\n", user.Username)
		case "login":
			username := c.prompt("Enter username: ")
			password := c.prompt("Enter password: ")
			user, _, err := c.auth.Authenticate(ctx, username, password)
			if err != nil {
				fmt.Println("Login failed:", err)
				continue
			}
			fmt.Printf("User %s logged in successfully!\n", user.Username)
			c.mainMenu(ctx, user.ID)
			return
		case "exit", "":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid option, please choose 'register', 'login', or 'exit'.")
		}
	}
}

func (c *cli) mainMenu(ctx context.Context, userID int64) {
	for {
		fmt.Println("\n--- Transaction Options ---")
		fmt.Println("1. Add Income")
		fmt.Println("2. Add Expense")
		fmt.Println("3. View Transactions")
		fmt.Println("4. Update Transaction")
		fmt.Println("5. Delete Transaction")
		fmt.Println("6. View Financial Report")
		fmt.Println("7. Set/Update Budget")
		fmt.Println("8. View Budget")
		fmt.Println("9. Logout")

		switch c.prompt("Choose an option: ") {
		case "1":
			c.addTransaction(ctx, userID, core.Income)
		case "2":
			c.addTransaction(ctx, userID, core.Expense)
		case "3":
			c.viewTransactions(ctx, userID)
		case "4":
			c.updateTransaction(ctx, userID)
		case "5":
			c.deleteTransaction(ctx, userID)
		case "6":
			c.viewReport(ctx, userID)
		case "7":
			c.setBudget(ctx, userID)
		case "8":
			c.viewBudget(ctx, userID)
		case "9", "":
			fmt.Println("Logging out...")
			return
		default:
			fmt.Println("Invalid choice, please try again.")
		}
	}
}

func (c *cli) readAmount(label string) (core.Money, bool) {
	cents, err := core.ParseDecimalToCents(c.prompt(label))
	if err != nil {
		fmt.Println("Invalid amount:", err)
		return core.Money{}, false
	}
	return core.Money{Cents: cents}, true
}

func (c *cli) readPeriod() (core.Period, bool) {
	period, err := core.ParsePeriod(strings.ToLower(c.prompt("Enter period ('monthly' or 'yearly'): ")))
	if err != nil {
		fmt.Println("Invalid period:", err)
		return "", false
	}
	return period, true
}

func (c *cli) addTransaction(ctx context.Context, userID int64, kind core.Kind) {
	amount, ok := c.readAmount(fmt.Sprintf("Enter %s amount: ", kind))
	if !ok {
		return
	}
	description := c.prompt("Enter description: ")
	category := c.prompt("Enter category (e.g., Salary, Food, Rent): ")

	var date core.Date
	if raw := c.prompt("Enter date yyyy-mm-dd (blank for today): "); raw != "" {
		var err error
		date, err = core.ParseDate(raw)
		if err != nil {
			fmt.Println("Invalid date, expected yyyy-mm-dd.")
			return
		}
	}

	tx, err := c.ledger.AddTransaction(ctx, userID, kind, amount, category, description, date)
	if err != nil {
		fmt.Println("Could not add transaction:", err)
		return
	}
	fmt.Printf("Recorded %s #%d: %s %s (%s)\n", tx.Kind, tx.ID, tx.Amount.Decimal(), tx.Category, tx.Date)
}

func (c *cli) viewTransactions(ctx context.Context, userID int64) {
	items, err := c.ledger.ListTransactions(ctx, userID)
	if err != nil {
		fmt.Println("Could not list transactions:", err)
		return
	}
	if len(items) == 0 {
		fmt.Println("No transactions recorded yet.")
		return
	}

	fmt.Println("\nID    Date        Kind     Amount      Category        Description")
	for _, tx := range items {
		fmt.Printf("%-5d %-11s %-8s %-11s %-15s %s\n",
			tx.ID, tx.Date, tx.Kind, tx.Amount.Decimal(), tx.Category, tx.Description)
	}
}

func (c *cli) readTransactionID() (int64, bool) {
	id, err := strconv.ParseInt(c.prompt("Enter transaction ID: "), 10, 64)
	if err != nil || id <= 0 {
		fmt.Println("Invalid transaction ID.")
		return 0, false
	}
	return id, true
}

func (c *cli) updateTransaction(ctx context.Context, userID int64) {
	id, ok := c.readTransactionID()
	if !ok {
		return
	}
	amount, ok := c.readAmount("Enter new amount: ")
	if !ok {
		return
	}
	category := c.prompt("Enter new category: ")
	kind, err := core.ParseKind(strings.ToLower(c.prompt("Enter type ('income' or 'expense'): ")))
	if err != nil {
		fmt.Println("Invalid type:", err)
		return
	}

	tx, err := c.ledger.UpdateTransaction(ctx, userID, id, amount, category, kind)
	if err != nil {
		fmt.Println("Could not update transaction:", err)
		return
	}
	fmt.Printf("Transaction %d updated: %s %s (%s)\n", tx.ID, tx.Amount.Decimal(), tx.Category, tx.Kind)
}

func (c *cli) deleteTransaction(ctx context.Context, userID int64) {
	id, ok := c.readTransactionID()
	if !ok {
		return
	}
	if err := c.ledger.DeleteTransaction(ctx, userID, id); err != nil {
		fmt.Println("Transaction not found or you do not have permission to delete it.")
		return
	}
	fmt.Printf("Transaction %d deleted successfully!\n", id)
}

func (c *cli) viewReport(ctx context.Context, userID int64) {
	period, ok := c.readPeriod()
	if !ok {
		return
	}

	report, err := c.reports.GenerateReport(ctx, userID, period)
	if err != nil {
		fmt.Println("Could not generate report:", err)
		return
	}

	fmt.Printf("\n--- %s report (%s to %s) ---\n", report.Period, report.Start, report.End)
	fmt.Println("Income: ", report.Income.Decimal())
	fmt.Println("Expense:", report.Expense.Decimal())
	fmt.Println("Savings:", report.Savings.Decimal())
}

func (c *cli) setBudget(ctx context.Context, userID int64) {
	fmt.Println("\n--- Set or Update Budget ---")
	category := c.prompt("Enter budget category (e.g., Food, Rent): ")
	amount, ok := c.readAmount(fmt.Sprintf("Enter the amount for the %s budget: ", category))
	if !ok {
		return
	}
	period, ok := c.readPeriod()
	if !ok {
		return
	}

	if err := c.budgets.SetBudget(ctx, userID, category, amount, period); err != nil {
		fmt.Println("Could not set budget:", err)
		return
	}
	fmt.Printf("Budget for %s in %s set to %s.\n", category, period, amount.Decimal())
}

func (c *cli) viewBudget(ctx context.Context, userID int64) {
	period, ok := c.readPeriod()
	if !ok {
		return
	}

	report, err := c.budgets.CheckExceedance(ctx, userID, period)
	if err != nil {
		fmt.Println("Could not check budgets:", err)
		return
	}
	if len(report.Statuses) == 0 {
		fmt.Println("No budgets set for this period.")
		return
	}

	fmt.Printf("\n--- Budget for %s ---\n", period)
	for _, st := range report.Statuses {
		fmt.Printf("Category: %s, Budget: %s, Total Expenses: %s\n",
			st.Category, st.Budget.Decimal(), st.Actual.Decimal())
		if st.Exceeded {
			fmt.Printf("Warning: You have exceeded your budget for %s!\n", st.Category)
		}
	}
	if !report.AnyExceeded {
		fmt.Println("You are within your budget for all categories.")
	}
}
