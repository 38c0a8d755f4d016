package participant

import "context"

type Repository interface {
	List(ctx context.Context, leagueID string) ([]Participant, error)
	GetByID(ctx context.Context, leagueID, participantID string) (Participant, bool, error)
	Create(ctx context.Context, p Participant) error
	Update(ctx context.Context, p Participant) error
	Delete(ctx context.Context, leagueID, participantID string) error
}
