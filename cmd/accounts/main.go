/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"sort"
	"strings"
	"time"

	"baas-admin-go/internal/common"
	"baas-admin-go/internal/config"
	"baas-admin-go/internal/models"

	"go.uber.org/zap"
)

type accountStats struct {
	total        int
	withMetadata int
	neverSignIn  int
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Format("2006-01-02 15:04:05")
}

func printAccount(account models.Account) {
	email := account.Email
	if email == "" {
		email = "(no email)"
	}
	fmt.Printf("\n┌─ Account: %s\n", email)
	fmt.Printf("│  ID: %s\n", account.Id)
	fmt.Printf("│  Created: %s\n", account.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("│  Last sign-in: %s\n", formatTime(account.LastSignInAt))

	keys := make([]string, 0, len(account.Metadata))
	for k := range account.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		fmt.Printf("%s Metadata: {}\n", common.BoxPrefix(true))
		return
	}
	for i, k := range keys {
		fmt.Printf("%s %-20s: %s\n", common.BoxPrefix(i == len(keys)-1), k, common.FormatCell(account.Metadata[k]))
	}
}

func filterAccounts(accounts []models.Account, email string) []models.Account {
	if email == "" {
		return accounts
	}
	var out []models.Account
	for _, a := range accounts {
		if strings.EqualFold(a.Email, email) {
			out = append(out, a)
		}
	}
	return out
}

func generateReport(accounts []models.Account) accountStats {
	stats := accountStats{}
	for _, account := range accounts {
		stats.total++
		if len(account.Metadata) > 0 {
			stats.withMetadata++
		}
		if account.LastSignInAt == nil {
			stats.neverSignIn++
		}
		printAccount(account)
	}
	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Filter by specific account email (optional)")
	flag.Parse()

	logger.Info("Starting account query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	accounts := filterAccounts(services.Dashboard.Accounts(ctx, true), *emailFlag)
	if *emailFlag != "" && len(accounts) == 0 {
		logger.Fatal("No account found with this email", zap.String("email", *emailFlag))
	}

	common.PrintHeader("ACCOUNT REPORT", common.DefaultWidth)

	stats := generateReport(accounts)

	summary := fmt.Sprintf("SUMMARY: %d accounts (%d with metadata, %d never signed in)",
		stats.total, stats.withMetadata, stats.neverSignIn)
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Account query completed",
		zap.Int("accounts", stats.total),
		zap.Int("with_metadata", stats.withMetadata))
}
