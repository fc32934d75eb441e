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
	"os"

	"baas-admin-go/internal/common"
	"baas-admin-go/internal/config"
	"baas-admin-go/internal/models"
	"baas-admin-go/internal/view"

	"go.uber.org/zap"
)

type viewStats struct {
	rows         int
	placeholders int
}

func countPlaceholders(spec view.RelationSpec, rows []models.Row) viewStats {
	stats := viewStats{rows: len(rows)}
	for _, row := range rows {
		if view.IsPlaceholder(spec, row) {
			stats.placeholders++
		}
	}
	return stats
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	// Parse command line flags
	relationFlag := flag.String("relation", "", "Relation to display (required)")
	listFlag := flag.Bool("list", false, "List tracked relations and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *listFlag || *relationFlag == "" {
		common.PrintHeader("TRACKED RELATIONS", common.DefaultWidth)
		names := services.Registry.Names()
		for i, name := range names {
			fmt.Printf("%s %s\n", common.BoxPrefix(i == len(names)-1), name)
		}
		if *relationFlag == "" && !*listFlag {
			fmt.Println("\nUse --relation <name> to display one of them")
		}
		return
	}

	logger.Info("Loading relation", zap.String("relation", *relationFlag))
	v, err := services.Dashboard.Load(ctx, *relationFlag)
	if err != nil {
		logger.Fatal("Failed to load relation", zap.String("relation", *relationFlag), zap.Error(err))
	}
	spec, err := services.Registry.Lookup(*relationFlag)
	if err != nil {
		logger.Fatal("Failed to look up relation", zap.Error(err))
	}

	common.PrintHeader(fmt.Sprintf("RELATION: %s", v.Relation), common.WideWidth)
	common.WriteTable(os.Stdout, v.Headers, v.Rows)

	stats := countPlaceholders(spec, v.Rows)
	summary := fmt.Sprintf("SUMMARY: %d display rows (%d accounts without rows)", stats.rows, stats.placeholders)
	common.PrintFooter(summary, common.WideWidth)

	logger.Info("Relation displayed",
		zap.String("relation", v.Relation),
		zap.Int("rows", stats.rows),
		zap.Int("placeholders", stats.placeholders))
}
