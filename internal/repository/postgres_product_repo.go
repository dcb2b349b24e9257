package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/katalog/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した商品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

// Upsert は(affiliate_program_id, external_id)をキーに商品をUPSERTする。
// 一意制約へのON CONFLICTにより挿入と上書きが原子的に行われ、
// 並行インポートの同一キー競合はエラーにならず後勝ちで解決する。
// 属性集合は同一トランザクション内で全削除後に再挿入し、完全置換する。
func (r *PostgresProductRepo) Upsert(ctx context.Context, product *model.Product) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	var productID string

	err = tx.QueryRowContext(ctx,
		`INSERT INTO products
		   (id, affiliate_program_id, external_id, name, description, price, sale_price,
		    original_url, image_url, brand, model, sku, ean, availability, condition,
		    shipping_weight, category_id, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, NULLIF($9, ''),
		         NULLIF($10, ''), NULLIF($11, ''), NULLIF($12, ''), NULLIF($13, ''),
		         NULLIF($14, ''), NULLIF($15, ''), $16, $17, TRUE, $18, $18)
		 ON CONFLICT (affiliate_program_id, external_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   description = EXCLUDED.description,
		   price = EXCLUDED.price,
		   sale_price = EXCLUDED.sale_price,
		   original_url = EXCLUDED.original_url,
		   image_url = EXCLUDED.image_url,
		   brand = EXCLUDED.brand,
		   model = EXCLUDED.model,
		   sku = EXCLUDED.sku,
		   ean = EXCLUDED.ean,
		   availability = EXCLUDED.availability,
		   condition = EXCLUDED.condition,
		   shipping_weight = EXCLUDED.shipping_weight,
		   category_id = EXCLUDED.category_id,
		   updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		uuid.New().String(), product.AffiliateProgramID, product.ExternalID,
		product.Name, product.Description, product.Price, product.SalePrice,
		product.OriginalURL, product.ImageURL, product.Brand, product.Model,
		product.SKU, product.EAN, product.Availability, product.Condition,
		product.ShippingWeight, product.CategoryID, now,
	).Scan(&productID)
	if err != nil {
		return "", fmt.Errorf("商品のUPSERTに失敗しました: %w", err)
	}

	// 属性の完全置換（マージではなく全削除+再挿入）
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM product_attributes WHERE product_id = $1`, productID,
	); err != nil {
		return "", fmt.Errorf("商品属性の削除に失敗しました: %w", err)
	}

	for _, attr := range product.Attributes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_attributes (id, product_id, name, value)
			 VALUES ($1, $2, $3, $4)`,
			uuid.New().String(), productID, attr.Name, attr.Value,
		); err != nil {
			return "", fmt.Errorf("商品属性の挿入に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}

	return productID, nil
}

// productColumns は商品選択クエリの共通カラムリスト。
const productColumns = `p.id, p.affiliate_program_id, p.external_id, p.name, p.description,
	       p.price, p.sale_price, p.original_url, p.image_url, p.brand, p.model,
	       p.sku, p.ean, p.availability, p.condition, p.shipping_weight,
	       p.category_id, p.is_active, p.created_at, p.updated_at,
	       ap.name, ap.base_url`

// scanProductRow は商品行とプログラム情報をスキャンする。
func scanProductRow(scanner interface{ Scan(...any) error }) (*ProductWithProgram, error) {
	row := &ProductWithProgram{}
	var description, imageURL, brand, mdl, sku, ean, availability, condition sql.NullString
	var salePrice, shippingWeight sql.NullFloat64
	var categoryID sql.NullString

	err := scanner.Scan(
		&row.ID, &row.AffiliateProgramID, &row.ExternalID, &row.Name, &description,
		&row.Price, &salePrice, &row.OriginalURL, &imageURL, &brand, &mdl,
		&sku, &ean, &availability, &condition, &shippingWeight,
		&categoryID, &row.IsActive, &row.CreatedAt, &row.UpdatedAt,
		&row.ProgramName, &row.ProgramBaseURL,
	)
	if err != nil {
		return nil, err
	}

	row.Description = description.String
	row.ImageURL = imageURL.String
	row.Brand = brand.String
	row.Model = mdl.String
	row.SKU = sku.String
	row.EAN = ean.String
	row.Availability = availability.String
	row.Condition = condition.String
	if salePrice.Valid {
		row.SalePrice = &salePrice.Float64
	}
	if shippingWeight.Valid {
		row.ShippingWeight = &shippingWeight.Float64
	}
	if categoryID.Valid {
		id := categoryID.String
		row.CategoryID = &id
	}

	return row, nil
}

// FindByID は指定IDの商品を属性付きで取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, id string) (*ProductWithProgram, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+`
		 FROM products p
		 JOIN affiliate_programs ap ON ap.id = p.affiliate_program_id
		 WHERE p.id = $1`,
		id,
	)

	product, err := scanProductRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("商品の取得に失敗しました: %w", err)
	}

	attrRows, err := r.db.QueryContext(ctx,
		`SELECT id, product_id, name, value
		 FROM product_attributes WHERE product_id = $1
		 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("商品属性の取得に失敗しました: %w", err)
	}
	defer attrRows.Close()

	for attrRows.Next() {
		attr := model.ProductAttribute{}
		if err := attrRows.Scan(&attr.ID, &attr.ProductID, &attr.Name, &attr.Value); err != nil {
			return nil, fmt.Errorf("商品属性行の読み取りに失敗しました: %w", err)
		}
		product.Attributes = append(product.Attributes, attr)
	}

	if err := attrRows.Err(); err != nil {
		return nil, fmt.Errorf("商品属性の走査に失敗しました: %w", err)
	}

	return product, nil
}

// List は検索条件に合致する有効な商品一覧と総件数を返す。
func (r *PostgresProductRepo) List(ctx context.Context, filter ProductFilter) ([]ProductWithProgram, int, error) {
	where := `WHERE p.is_active = TRUE`
	var args []any

	addArg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		placeholder := addArg("%" + filter.Search + "%")
		where += fmt.Sprintf(
			` AND (p.name ILIKE %[1]s OR p.description ILIKE %[1]s OR p.brand ILIKE %[1]s)`,
			placeholder,
		)
	}
	if filter.CategoryID != "" {
		where += ` AND p.category_id = ` + addArg(filter.CategoryID)
	}
	if filter.Brand != "" {
		where += ` AND p.brand ILIKE ` + addArg("%"+filter.Brand+"%")
	}
	if filter.MinPrice != nil {
		where += ` AND p.price >= ` + addArg(*filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where += ` AND p.price <= ` + addArg(*filter.MaxPrice)
	}

	var total int
	countQuery := `SELECT count(*) FROM products p ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("商品件数の取得に失敗しました: %w", err)
	}

	query := `SELECT ` + productColumns + `
		 FROM products p
		 JOIN affiliate_programs ap ON ap.id = p.affiliate_program_id
		 ` + where + `
		 ORDER BY p.created_at DESC
		 LIMIT ` + addArg(filter.Limit) + ` OFFSET ` + addArg(filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("商品一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var products []ProductWithProgram
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("商品行の読み取りに失敗しました: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("商品一覧の走査に失敗しました: %w", err)
	}

	return products, total, nil
}

// CountByExternalID は指定プログラム・外部IDの商品数を返す。
func (r *PostgresProductRepo) CountByExternalID(ctx context.Context, programID, externalID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM products
		 WHERE affiliate_program_id = $1 AND external_id = $2`,
		programID, externalID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("商品件数の取得に失敗しました: %w", err)
	}
	return count, nil
}
