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

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"baas-admin-go/internal/models"
)

const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
)

func Load() (*models.Config, error) {
	requestTimeout, err := getEnvDuration("GATEWAY_REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	connMaxLifetime, err := getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	connMaxIdleTime, err := getEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Second)
	if err != nil {
		return nil, err
	}

	pingTimeout, err := getEnvDuration("DB_PING_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	backend := strings.ToLower(getEnvString("GATEWAY_BACKEND", BackendSQLite))
	if backend != BackendSupabase && backend != BackendSQLite {
		return nil, fmt.Errorf("invalid GATEWAY_BACKEND %q (want %s or %s)", backend, BackendSupabase, BackendSQLite)
	}

	return &models.Config{
		Gateway: models.GatewayConfig{
			Backend:        backend,
			URL:            strings.TrimRight(getEnvString("SUPABASE_URL", ""), "/"),
			ServiceKey:     getEnvString("SUPABASE_SERVICE_ROLE_KEY", ""),
			RequestTimeout: requestTimeout,
		},
		Database: models.DatabaseConfig{
			Path:             getEnvString("DATABASE_PATH", "admin.db"),
			MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  connMaxLifetime,
			ConnMaxIdleTime:  connMaxIdleTime,
			PingTimeout:      pingTimeout,
			CreateDummyUsers: getEnvBool("CREATE_DUMMY_USERS", false),
		},
		Dashboard: models.DashboardConfig{
			RelationsFile:   getEnvString("RELATIONS_FILE", "relations.yaml"),
			AccountPageSize: getEnvInt("ACCOUNT_PAGE_SIZE", 100),
			RowLimit:        getEnvInt("ROW_LIMIT", 1000),
		},
		Server: models.ServerConfig{
			Port:            getEnvInt("SERVER_PORT", 8080),
			ShutdownTimeout: shutdownTimeout,
		},
	}, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		duration, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %q (%w)", key, value, err)
		}
		return duration, nil
	}
	return defaultValue, nil
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
