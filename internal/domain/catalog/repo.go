package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Spok95/spa-clinic/internal/domain/pricing"
	"github.com/Spok95/spa-clinic/internal/infra/db"
)

var (
	ErrNotFound      = errors.New("catalog: not found")
	ErrDuplicateName = errors.New("catalog: name already exists")
	ErrInUse         = errors.New("catalog: treatment has assignments")
	ErrNotPromotion  = errors.New("catalog: treatment is not a promotion")
)

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	if err := row.Scan(&t.ID, &t.Name, &t.Cost, &t.IsPromotion, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrDuplicateName
	case db.IsForeignKeyViolation(err):
		return ErrInUse
	}
	return err
}

/* Treatments */

func (r *Repo) CreateTreatment(ctx context.Context, in TreatmentInput) (*Treatment, error) {
	t, err := scanTreatment(r.pool.QueryRow(ctx, `
		INSERT INTO treatments (name, cost, is_promotion) VALUES ($1,$2,FALSE)
		RETURNING id, name, cost, is_promotion, created_at
	`, strings.TrimSpace(in.Name), in.Cost))
	return t, mapWriteErr(err)
}

func (r *Repo) UpdateTreatment(ctx context.Context, id int64, in TreatmentInput) (*Treatment, error) {
	// цену промо-пакета меняют только через компоненты
	t, err := scanTreatment(r.pool.QueryRow(ctx, `
		UPDATE treatments
		SET name=$2, cost = CASE WHEN is_promotion THEN cost ELSE $3 END
		WHERE id=$1
		RETURNING id, name, cost, is_promotion, created_at
	`, id, strings.TrimSpace(in.Name), in.Cost))
	return t, mapWriteErr(err)
}

func (r *Repo) DeleteTreatment(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM treatments WHERE id=$1`, id)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) ListTreatments(ctx context.Context) ([]Treatment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, cost, is_promotion, created_at
		FROM treatments
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Treatment{}
	for rows.Next() {
		var t Treatment
		if err := rows.Scan(&t.ID, &t.Name, &t.Cost, &t.IsPromotion, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTreatment возвращает процедуру; для промо-пакета — вместе с компонентами.
func (r *Repo) GetTreatment(ctx context.Context, id int64) (*Treatment, error) {
	t, err := scanTreatment(r.pool.QueryRow(ctx, `
		SELECT id, name, cost, is_promotion, created_at
		FROM treatments WHERE id=$1
	`, id))
	if err != nil {
		return nil, err
	}
	if t.IsPromotion {
		if t.Components, err = r.ListComponents(ctx, id); err != nil {
			return nil, err
		}
	}
	return t, nil
}

/* Promotions */

// GetPromotion — как GetTreatment, но обычная процедура даёт ErrNotPromotion.
func (r *Repo) GetPromotion(ctx context.Context, id int64) (*Treatment, error) {
	t, err := r.GetTreatment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.IsPromotion {
		return nil, ErrNotPromotion
	}
	return t, nil
}

// CreatePromotion создаёт промо-пакет и его компоненты одной транзакцией;
// цена пакета = сумма price*sessions по компонентам.
func (r *Repo) CreatePromotion(ctx context.Context, in PromotionInput) (*Treatment, error) {
	var out *Treatment
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		total := pricing.PromotionTotal(toPricing(in.Components))

		t, err := scanTreatment(tx.QueryRow(ctx, `
			INSERT INTO treatments (name, cost, is_promotion) VALUES ($1,$2,TRUE)
			RETURNING id, name, cost, is_promotion, created_at
		`, strings.TrimSpace(in.Name), total))
		if err != nil {
			return err
		}

		for _, c := range in.Components {
			var pc PromotionComponent
			if err := tx.QueryRow(ctx, `
				INSERT INTO promotion_details (promotion_id, component_name, session_count, price_per_session)
				VALUES ($1,$2,$3,$4)
				RETURNING id, promotion_id, component_name, session_count, price_per_session
			`, t.ID, strings.TrimSpace(c.Name), c.SessionCount, c.PricePerSession).
				Scan(&pc.ID, &pc.PromotionID, &pc.Name, &pc.SessionCount, &pc.PricePerSession); err != nil {
				return err
			}
			t.Components = append(t.Components, pc)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, mapWriteErr(err)
	}
	return out, nil
}

func (r *Repo) ListComponents(ctx context.Context, promotionID int64) ([]PromotionComponent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, promotion_id, component_name, session_count, price_per_session
		FROM promotion_details
		WHERE promotion_id=$1
		ORDER BY id
	`, promotionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PromotionComponent{}
	for rows.Next() {
		var c PromotionComponent
		if err := rows.Scan(&c.ID, &c.PromotionID, &c.Name, &c.SessionCount, &c.PricePerSession); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

/* Prices (импорт прайса) */

// UpdateCost меняет цену обычной процедуры. Для промо-пакета — ErrNotFound.
func (r *Repo) UpdateCost(ctx context.Context, id int64, cost decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE treatments SET cost=$2 WHERE id=$1 AND is_promotion = FALSE
	`, id, cost)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateComponentPrice меняет цену компонента и пересчитывает цену пакета
// в той же транзакции, чтобы сумма компонентов и цена пакета не расходились.
func (r *Repo) UpdateComponentPrice(ctx context.Context, componentID int64, price decimal.Decimal) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		var promotionID int64
		err := tx.QueryRow(ctx, `
			UPDATE promotion_details SET price_per_session=$2 WHERE id=$1
			RETURNING promotion_id
		`, componentID, price).Scan(&promotionID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE treatments SET cost = (
				SELECT COALESCE(SUM(price_per_session * session_count), 0)
				FROM promotion_details WHERE promotion_id=$1
			)
			WHERE id=$1
		`, promotionID)
		return err
	})
}

func toPricing(in []ComponentInput) []pricing.Component {
	out := make([]pricing.Component, 0, len(in))
	for _, c := range in {
		out = append(out, pricing.Component{Name: c.Name, Price: c.PricePerSession, Sessions: c.SessionCount})
	}
	return out
}
