package calculator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/natalia11920/pairpay/internal/models"
)

// ErrInvalidSplit is returned when an expense cannot be split.
var ErrInvalidSplit = errors.New("invalid split")

// EqualSplit divides price (minor units) equally among participants.
//
// Every participant owes price / N. The remaining price % N minor units go
// one each to the participants with the lowest ids, so the shares always
// sum to exactly price and the result does not depend on input order.
func EqualSplit(price int64, participants []int64) (map[int64]int64, error) {
	shares, err := Shares(price, participants)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(shares))
	for _, s := range shares {
		out[s.UserID] = s.AmountOwed
	}
	return out, nil
}

// Shares is EqualSplit returning shares ordered by ascending user id.
func Shares(price int64, participants []int64) ([]models.Share, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidSplit)
	}
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}

	ids := slices.Clone(participants)
	slices.Sort(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return nil, fmt.Errorf("%w: participant %d listed twice", ErrInvalidSplit, ids[i])
		}
	}

	n := int64(len(ids))
	base := price / n
	remainder := price % n

	shares := make([]models.Share, len(ids))
	for i, id := range ids {
		owed := base
		if int64(i) < remainder {
			owed++
		}
		shares[i] = models.Share{UserID: id, AmountOwed: owed}
	}
	return shares, nil
}
