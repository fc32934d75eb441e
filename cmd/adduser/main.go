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
	"strings"

	"baas-admin-go/internal/common"
	"baas-admin-go/internal/config"
	"baas-admin-go/internal/models"
	"baas-admin-go/internal/store"

	"go.uber.org/zap"
)

func findAccount(accounts []models.Account, email string) (models.Account, bool) {
	for _, a := range accounts {
		if strings.EqualFold(a.Email, email) {
			return a, true
		}
	}
	return models.Account{}, false
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	emailFlag := flag.String("email", "", "Account email address (required)")
	passwordFlag := flag.String("password", "", "Account password, at least 6 characters (required)")
	metadataFlag := flag.String("metadata", "", "Account metadata as a JSON object (optional)")
	flag.Parse()

	if *emailFlag == "" || *passwordFlag == "" {
		zap.L().Fatal("Both flags are required: --email and --password")
	}

	email := strings.TrimSpace(*emailFlag)
	zap.L().Info("Starting account creation", zap.String("email", email))

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.Dashboard.CreateAccount(ctx, email, *passwordFlag, *metadataFlag); err != nil {
		if store.KindOf(err) == store.KindConflict {
			zap.L().Fatal("Account already exists with this email", zap.String("email", email))
		}
		zap.L().Fatal("Failed to create account",
			zap.String("reason", store.Message(err)),
			zap.Error(err))
	}

	account, ok := findAccount(services.Dashboard.Accounts(ctx, false), email)

	fmt.Println()
	common.PrintHeader("ACCOUNT CREATED", common.DefaultWidth)
	if ok {
		fmt.Printf("ID:       %s\n", account.Id)
	}
	fmt.Printf("Email:    %s\n", email)
	if ok {
		fmt.Printf("Metadata: %s\n", common.FormatCell(account.Metadata))
	}
	common.PrintSeparator("=", common.DefaultWidth)
	fmt.Println()

	zap.L().Info("Account created successfully", zap.String("email", email))
}
