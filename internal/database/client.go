package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"avatar-wizard-backend/internal/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

type Client struct {
	db *sql.DB
}

func NewClient(connectionString string) (*Client, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) CreateUpload(ctx context.Context, upload *models.Upload) (*models.Upload, error) {
	var created models.Upload
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO uploads (original_name, storage_path, file_type, file_size, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, original_name, storage_path, file_type, file_size, user_id, created_at
	`, upload.OriginalName, upload.StoragePath, upload.FileType, upload.FileSize, upload.UserID).Scan(
		&created.ID, &created.OriginalName, &created.StoragePath,
		&created.FileType, &created.FileSize, &created.UserID, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload: %w", err)
	}

	return &created, nil
}

func (c *Client) GetUpload(ctx context.Context, id int64) (*models.Upload, error) {
	var upload models.Upload
	err := c.db.QueryRowContext(ctx, `
		SELECT id, original_name, storage_path, file_type, file_size, user_id, created_at
		FROM uploads
		WHERE id = $1
	`, id).Scan(
		&upload.ID, &upload.OriginalName, &upload.StoragePath,
		&upload.FileType, &upload.FileSize, &upload.UserID, &upload.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upload: %w", err)
	}

	return &upload, nil
}

func (c *Client) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	var created models.Order
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO orders (first_name, last_name, email, phone, original_image_url, generated_avatar_url, prompt, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, first_name, last_name, email, phone, original_image_url, generated_avatar_url, prompt, status, model_url, created_at
	`, order.FirstName, order.LastName, order.Email, order.Phone,
		order.OriginalImageURL, order.GeneratedAvatarURL, order.Prompt, "pending").Scan(
		&created.ID, &created.FirstName, &created.LastName, &created.Email, &created.Phone,
		&created.OriginalImageURL, &created.GeneratedAvatarURL, &created.Prompt,
		&created.Status, &created.ModelURL, &created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &created, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := c.db.QueryRowContext(ctx, `
		SELECT id, first_name, last_name, email, phone, original_image_url, generated_avatar_url, prompt, status, model_url, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID, &order.FirstName, &order.LastName, &order.Email, &order.Phone,
		&order.OriginalImageURL, &order.GeneratedAvatarURL, &order.Prompt,
		&order.Status, &order.ModelURL, &order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, phone, original_image_url, generated_avatar_url, prompt, status, model_url, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID, &order.FirstName, &order.LastName, &order.Email, &order.Phone,
			&order.OriginalImageURL, &order.GeneratedAvatarURL, &order.Prompt,
			&order.Status, &order.ModelURL, &order.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// UpdateOrderStatus overwrites the status unconditionally. There is no
// transition table: any non-empty status replaces any other.
func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var order models.Order
	err := c.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1
		WHERE id = $2
		RETURNING id, first_name, last_name, email, phone, original_image_url, generated_avatar_url, prompt, status, model_url, created_at
	`, status, id).Scan(
		&order.ID, &order.FirstName, &order.LastName, &order.Email, &order.Phone,
		&order.OriginalImageURL, &order.GeneratedAvatarURL, &order.Prompt,
		&order.Status, &order.ModelURL, &order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return &order, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}
