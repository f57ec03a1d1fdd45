package repos

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	applog "partsstore/internal/log"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Passw0rd!"

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dsn == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed the demo catalog if the DB is empty
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	// Ensure one account per role exists (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_name_nocase ON categories(LOWER(name));

-- Products (money columns are decimal strings)
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL REFERENCES categories(id) ON DELETE RESTRICT,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT 'Unknown',
  description TEXT,
  condition TEXT NOT NULL CHECK (condition IN ('New','Used','Refurbished')),
  price TEXT NOT NULL,
  original_price TEXT,
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  images_json TEXT,
  tags_json TEXT,
  discount_percentage INTEGER NOT NULL DEFAULT 0,
  popularity INTEGER NOT NULL DEFAULT 0,
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_category   ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_brand      ON products(brand);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);

-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('retail','wholesale','dealer','admin')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  last_seen  TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Cart and quote slots: one JSON payload per owner and store name
CREATE TABLE IF NOT EXISTS slots(
  owner TEXT NOT NULL,
  name TEXT NOT NULL,
  payload BLOB NOT NULL,
  updated_at TEXT,
  PRIMARY KEY (owner, name)
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT,
  user_id TEXT,
  fulfillment TEXT,              -- delivery|pickup
  customer_name TEXT,
  customer_email TEXT,
  subtotal TEXT NOT NULL DEFAULT '0',
  discount TEXT NOT NULL DEFAULT '0',
  discount_code TEXT,
  tax TEXT NOT NULL DEFAULT '0',
  shipping TEXT NOT NULL DEFAULT '0',
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PLACED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL REFERENCES products(id),
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  price TEXT NOT NULL,
  PRIMARY KEY (order_id, product_id)
);

-- Quote requests
CREATE TABLE IF NOT EXISTS quote_requests(
  id TEXT PRIMARY KEY,
  session_id TEXT,
  user_id TEXT,
  name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT,
  company TEXT,
  message TEXT,
  items_json TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'NEW',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_quote_requests_created_at ON quote_requests(created_at);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM categories`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed: inserting demo categories and products")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO categories(id,name) VALUES
	  ('screens','Screens'),
	  ('batteries','Batteries'),
	  ('charging-ports','Charging Ports'),
	  ('cameras','Cameras'),
	  ('tools','Tools')`)

	tx.MustExec(`INSERT INTO products(
	    id,category_id,name,brand,description,condition,price,original_price,stock,
	    images_json,tags_json,discount_percentage,popularity,created_at) VALUES
	  ('ip13-oled','screens','iPhone 13 OLED Assembly','Apple','Full OLED display with digitizer and frame','New','129.99','149.99',12,
	   '["/media/parts/ip13-oled.jpg"]','["oled","iphone 13","display"]',0,48,'2025-04-20T10:00:00Z'),
	  ('ip12-lcd','screens','iPhone 12 Incell LCD','Apple','Aftermarket incell LCD for iPhone 12','Refurbished','54.50',NULL,3,
	   '["/media/parts/ip12-lcd.jpg"]','["lcd","iphone 12","display"]',10,31,'2025-04-18T10:00:00Z'),
	  ('s21-oled','screens','Galaxy S21 OLED Screen','Samsung','Service pack OLED with frame','New','189.00','219.00',6,
	   '["/media/parts/s21-oled.jpg"]','["oled","galaxy s21","display"]',0,22,'2025-04-15T10:00:00Z'),
	  ('ip13-bat','batteries','iPhone 13 Battery','Apple','3227 mAh replacement cell with adhesive','New','24.99',NULL,40,
	   '["/media/parts/ip13-bat.jpg"]','["battery","iphone 13"]',0,75,'2025-04-12T10:00:00Z'),
	  ('px6-bat','batteries','Pixel 6 Battery','Google','4614 mAh replacement battery','Used','19.00',NULL,0,
	   '["/media/parts/px6-bat.jpg"]','["battery","pixel 6"]',0,9,'2025-04-10T10:00:00Z'),
	  ('s21-port','charging-ports','Galaxy S21 USB-C Port Flex','Samsung','Charging port flex cable assembly','New','14.75',NULL,25,
	   '["/media/parts/s21-port.jpg"]','["usb-c","galaxy s21","charging"]',20,40,'2025-04-08T10:00:00Z'),
	  ('ip13-cam','cameras','iPhone 13 Rear Camera Module','Apple','Dual rear camera module','Refurbished','89.00','120.00',2,
	   '["/media/parts/ip13-cam.jpg"]','["camera","iphone 13"]',0,17,'2025-04-05T10:00:00Z'),
	  ('kit-pro','tools','Pro Repair Tool Kit','iFixit','64 bit driver kit with spudgers and picks','New','69.99',NULL,15,
	   '["/media/parts/kit-pro.jpg"]','["tools","driver","spudger"]',0,60,'2025-04-01T10:00:00Z'),
	  ('heat-mat','tools','Screen Separator Heat Mat','Generic','Adjustable heating pad for screen removal','New','249.00',NULL,4,
	   '["/media/parts/heat-mat.jpg"]','["tools","heat"]',0,5,'2025-03-28T10:00:00Z')`)

	return tx.Commit()
}

// seedUsers ensures one account per role exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Hash string
	}
	h, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	mk := func(id, email, name, role string) u {
		return u{ID: id, Email: email, Name: name, Role: role, Hash: string(h)}
	}

	users := []u{
		mk("u-rita", "rita@partsstore.test", "Rita", "retail"),
		mk("u-walt", "walt@partsstore.test", "Walt", "wholesale"),
		mk("u-dana", "dana@partsstore.test", "Dana", "dealer"),
		mk("u-admin", "admin@partsstore.test", "Admin", "admin"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role)
			VALUES(?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role); err != nil {
			applog.L().Error("seed: user insert failed", zap.String("email", x.Email), zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}
