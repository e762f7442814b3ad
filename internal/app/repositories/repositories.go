package repositories

import (
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/campushub/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	Accounts      *AccountRepository
	Sessions      *SessionRepository
	Colleges      *CollegeRepository
	Companies     *CompanyRepository
	Events        *EventRepository
	Opportunities *OpportunityRepository
	Applications  *ApplicationRepository
	Registrations *RegistrationRepository
	Connections   *ConnectionRepository
	Inquiries     *InquiryRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		Accounts:      NewAccountRepository(database),
		Sessions:      NewSessionRepository(database.Pool),
		Colleges:      NewCollegeRepository(database.Pool),
		Companies:     NewCompanyRepository(database.Pool),
		Events:        NewEventRepository(database.Pool),
		Opportunities: NewOpportunityRepository(database.Pool),
		Applications:  NewApplicationRepository(database.Pool),
		Registrations: NewRegistrationRepository(database),
		Connections:   NewConnectionRepository(database.Pool),
		Inquiries:     NewInquiryRepository(database.Pool),
	}
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func joinList(cols []string) string {
	return strings.Join(cols, ", ")
}

// notFound maps pgx.ErrNoRows to the given sentinel and leaves other errors alone
func notFound(err, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into an escaped ILIKE substring pattern
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(q)) + "%"
}

// nonNilStrings keeps TEXT[] NOT NULL columns from receiving NULL
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// blankToNil stores empty optional text as NULL
func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
