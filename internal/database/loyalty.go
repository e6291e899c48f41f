package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// --- Tiers ---

const createTier = `
INSERT INTO tiers (tier_name, tier_level)
VALUES ($1, $2)
RETURNING tier_id, tier_name, tier_level
`

type CreateTierParams struct {
	TierName  string
	TierLevel int32
}

func (q *Queries) CreateTier(ctx context.Context, arg CreateTierParams) (Tier, error) {
	row := q.db.QueryRow(ctx, createTier, arg.TierName, arg.TierLevel)
	var t Tier
	err := row.Scan(&t.TierID, &t.TierName, &t.TierLevel)
	return t, err
}

const getTier = `
SELECT tier_id, tier_name, tier_level
FROM tiers
WHERE tier_id = $1
`

func (q *Queries) GetTier(ctx context.Context, tierID int64) (Tier, error) {
	row := q.db.QueryRow(ctx, getTier, tierID)
	var t Tier
	err := row.Scan(&t.TierID, &t.TierName, &t.TierLevel)
	return t, err
}

const listTiers = `
SELECT tier_id, tier_name, tier_level
FROM tiers
ORDER BY tier_level, tier_id
`

func (q *Queries) ListTiers(ctx context.Context) ([]Tier, error) {
	rows, err := q.db.Query(ctx, listTiers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Tier
	for rows.Next() {
		var t Tier
		if err := rows.Scan(&t.TierID, &t.TierName, &t.TierLevel); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTier = `
UPDATE tiers
SET tier_name = $2, tier_level = $3
WHERE tier_id = $1
RETURNING tier_id, tier_name, tier_level
`

type UpdateTierParams struct {
	TierID    int64
	TierName  string
	TierLevel int32
}

func (q *Queries) UpdateTier(ctx context.Context, arg UpdateTierParams) (Tier, error) {
	row := q.db.QueryRow(ctx, updateTier, arg.TierID, arg.TierName, arg.TierLevel)
	var t Tier
	err := row.Scan(&t.TierID, &t.TierName, &t.TierLevel)
	return t, err
}

const deleteTier = `
DELETE FROM tiers
WHERE tier_id = $1
RETURNING tier_id
`

func (q *Queries) DeleteTier(ctx context.Context, tierID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteTier, tierID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

// --- Memberships ---

const createMembership = `
INSERT INTO memberships (tier_id, name, phone, email)
VALUES ($1, $2, $3, $4)
RETURNING membership_id, tier_id, name, phone, email, points_balance, joined_at
`

type CreateMembershipParams struct {
	TierID int64
	Name   string
	Phone  string
	Email  pgtype.Text
}

func (q *Queries) CreateMembership(ctx context.Context, arg CreateMembershipParams) (Membership, error) {
	row := q.db.QueryRow(ctx, createMembership, arg.TierID, arg.Name, arg.Phone, arg.Email)
	var m Membership
	err := row.Scan(&m.MembershipID, &m.TierID, &m.Name, &m.Phone, &m.Email,
		&m.PointsBalance, &m.JoinedAt)
	return m, err
}

const getMembership = `
SELECT membership_id, tier_id, name, phone, email, points_balance, joined_at
FROM memberships
WHERE membership_id = $1
`

func (q *Queries) GetMembership(ctx context.Context, membershipID int64) (Membership, error) {
	row := q.db.QueryRow(ctx, getMembership, membershipID)
	var m Membership
	err := row.Scan(&m.MembershipID, &m.TierID, &m.Name, &m.Phone, &m.Email,
		&m.PointsBalance, &m.JoinedAt)
	return m, err
}

const getMembershipForUpdate = `
SELECT membership_id, tier_id, name, phone, email, points_balance, joined_at
FROM memberships
WHERE membership_id = $1
FOR NO KEY UPDATE
`

// GetMembershipForUpdate locks the membership row for the rest of the
// transaction so point redemption checks cannot race with other settlements.
func (q *Queries) GetMembershipForUpdate(ctx context.Context, membershipID int64) (Membership, error) {
	row := q.db.QueryRow(ctx, getMembershipForUpdate, membershipID)
	var m Membership
	err := row.Scan(&m.MembershipID, &m.TierID, &m.Name, &m.Phone, &m.Email,
		&m.PointsBalance, &m.JoinedAt)
	return m, err
}

const listMemberships = `
SELECT membership_id, tier_id, name, phone, email, points_balance, joined_at
FROM memberships
ORDER BY membership_id
LIMIT $1 OFFSET $2
`

type ListMembershipsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListMemberships(ctx context.Context, arg ListMembershipsParams) ([]Membership, error) {
	rows, err := q.db.Query(ctx, listMemberships, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.MembershipID, &m.TierID, &m.Name, &m.Phone, &m.Email,
			&m.PointsBalance, &m.JoinedAt); err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

const updateMembership = `
UPDATE memberships
SET tier_id = $2, name = $3, phone = $4, email = $5
WHERE membership_id = $1
RETURNING membership_id, tier_id, name, phone, email, points_balance, joined_at
`

type UpdateMembershipParams struct {
	MembershipID int64
	TierID       int64
	Name         string
	Phone        string
	Email        pgtype.Text
}

func (q *Queries) UpdateMembership(ctx context.Context, arg UpdateMembershipParams) (Membership, error) {
	row := q.db.QueryRow(ctx, updateMembership,
		arg.MembershipID, arg.TierID, arg.Name, arg.Phone, arg.Email)
	var m Membership
	err := row.Scan(&m.MembershipID, &m.TierID, &m.Name, &m.Phone, &m.Email,
		&m.PointsBalance, &m.JoinedAt)
	return m, err
}

const deleteMembership = `
DELETE FROM memberships
WHERE membership_id = $1
RETURNING membership_id
`

func (q *Queries) DeleteMembership(ctx context.Context, membershipID int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteMembership, membershipID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const addMembershipPoints = `
UPDATE memberships
SET points_balance = points_balance + $2
WHERE membership_id = $1
RETURNING membership_id, tier_id, name, phone, email, points_balance, joined_at
`

type AddMembershipPointsParams struct {
	MembershipID int64
	Delta        int32
}

// AddMembershipPoints applies a relative balance change. Negative deltas that
// would take the balance below zero violate the table CHECK and fail.
func (q *Queries) AddMembershipPoints(ctx context.Context, arg AddMembershipPointsParams) (Membership, error) {
	row := q.db.QueryRow(ctx, addMembershipPoints, arg.MembershipID, arg.Delta)
	var m Membership
	err := row.Scan(&m.MembershipID, &m.TierID, &m.Name, &m.Phone, &m.Email,
		&m.PointsBalance, &m.JoinedAt)
	return m, err
}
