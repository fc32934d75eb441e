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

package database

const (
	schema = `
	-- Identity store
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		metadata TEXT NOT NULL DEFAULT '{}',
		secret_hash BLOB NOT NULL,
		secret_salt BLOB NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_sign_in_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_accounts_created_at ON accounts(created_at);

	-- Demo relations
	CREATE TABLE IF NOT EXISTS subscriptions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		plan TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		expires_at TIMESTAMP,
		metadata TEXT
	);

	CREATE TABLE IF NOT EXISTS referral_usages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		referral_code TEXT NOT NULL,
		used_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS user_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		course TEXT NOT NULL,
		progress TEXT,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS referral_codes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		discount_percent INTEGER,
		max_uses INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_subscriptions_user ON subscriptions(user_id);
	CREATE INDEX IF NOT EXISTS idx_referral_usages_user ON referral_usages(user_id);
	CREATE INDEX IF NOT EXISTS idx_user_progress_user ON user_progress(user_id);
	`

	// Account queries
	queryCountAccounts = `SELECT COUNT(*) FROM accounts`

	queryListAccounts = `
		SELECT id, email, metadata, created_at, last_sign_in_at
		FROM accounts
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`

	queryInsertAccount = `
		INSERT INTO accounts (id, email, metadata, secret_hash, secret_salt)
		VALUES (?, ?, ?, ?, ?)`

	queryUpdateAccountMetadata = `
		UPDATE accounts SET metadata = ? WHERE id = ?`

	queryDeleteAccount = `
		DELETE FROM accounts WHERE id = ?`

	// Relation queries
	queryTableExists = `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
)
