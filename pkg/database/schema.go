package database

// schema is written against the common subset of Postgres and SQLite so the
// same DDL backs production and the in-memory test databases.
const schema = `
CREATE TABLE IF NOT EXISTS customers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL UNIQUE,
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	pincode TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS leads (
	id TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES customers(id),
	status TEXT NOT NULL DEFAULT 'new',
	call1 TEXT NOT NULL DEFAULT '',
	call2 TEXT NOT NULL DEFAULT '',
	call3 TEXT NOT NULL DEFAULT '',
	scheduled BOOLEAN NOT NULL DEFAULT FALSE,
	selected_date TEXT NOT NULL DEFAULT '',
	time_slot TEXT NOT NULL DEFAULT '',
	next_action_date TIMESTAMP,
	appointment_booked BOOLEAN NOT NULL DEFAULT FALSE,
	booked_date TEXT NOT NULL DEFAULT '',
	preferred_experience_center TEXT NOT NULL DEFAULT '',
	preferred_products TEXT NOT NULL DEFAULT '[]',
	preferred_product_options TEXT NOT NULL DEFAULT '{}',
	remarks TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL DEFAULT '',
	page_type TEXT NOT NULL DEFAULT '',
	campaign_id TEXT NOT NULL DEFAULT '',
	specific_details TEXT NOT NULL DEFAULT '{}',
	is_revisit BOOLEAN NOT NULL DEFAULT FALSE,
	assigned_to TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_customer ON leads(customer_id);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_assigned_to ON leads(assigned_to);

CREATE TABLE IF NOT EXISTS lead_history (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL REFERENCES leads(id),
	field_name TEXT NOT NULL,
	old_value TEXT NOT NULL DEFAULT '',
	new_value TEXT NOT NULL DEFAULT '',
	changed_by TEXT NOT NULL DEFAULT '',
	changed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_lead_history_lead ON lead_history(lead_id);

CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	role TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	options TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS salons (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	owner_name TEXT NOT NULL DEFAULT '',
	owner_phone TEXT NOT NULL DEFAULT '',
	manager_name TEXT NOT NULL DEFAULT '',
	manager_phone TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	pincode TEXT NOT NULL DEFAULT '',
	latitude TEXT NOT NULL DEFAULT '',
	longitude TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL DEFAULT 'APPROACH',
	checklist TEXT NOT NULL DEFAULT '{}',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS stylists (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	salon_id TEXT NOT NULL DEFAULT '',
	level TEXT NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stylists_salon ON stylists(salon_id);

CREATE TABLE IF NOT EXISTS salon_agents (
	salon_id TEXT NOT NULL REFERENCES salons(id),
	agent_id TEXT NOT NULL REFERENCES users(id),
	assigned_at TIMESTAMP NOT NULL,
	PRIMARY KEY (salon_id, agent_id)
);

CREATE TABLE IF NOT EXISTS discount_codes (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS referrals (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL DEFAULT '',
	stylist_id TEXT NOT NULL DEFAULT '',
	salon_id TEXT NOT NULL DEFAULT '',
	discount_code_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	order_amount REAL NOT NULL DEFAULT 0,
	suggested_commission REAL NOT NULL DEFAULT 0,
	commission_amount REAL,
	suggested_salon_commission REAL NOT NULL DEFAULT 0,
	actual_salon_commission REAL,
	credited_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_referrals_status ON referrals(status);

CREATE TABLE IF NOT EXISTS commission_rules (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	rule_type TEXT NOT NULL DEFAULT 'percentage',
	value REAL NOT NULL DEFAULT 0,
	min_order_amount REAL NOT NULL DEFAULT 0,
	max_commission REAL,
	allowed_levels TEXT NOT NULL DEFAULT '[]',
	role_applicable TEXT NOT NULL DEFAULT '[]',
	product_ids TEXT NOT NULL DEFAULT '[]',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	priority INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS call_logs (
	id TEXT PRIMARY KEY,
	lead_id TEXT NOT NULL DEFAULT '',
	caller_id TEXT NOT NULL DEFAULT '',
	phone_number TEXT NOT NULL,
	direction TEXT NOT NULL DEFAULT 'outbound',
	status TEXT NOT NULL DEFAULT 'initiated',
	created_at TIMESTAMP NOT NULL
);
`
