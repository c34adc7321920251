package domain

type Buyer struct {
	ID      int64   `db:"id" json:"id"`
	Name    string  `db:"name" json:"name"`
	Phone   *string `db:"phone" json:"phone"`
	Address *string `db:"address" json:"address"`
}
