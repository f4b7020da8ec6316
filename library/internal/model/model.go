package model

import (
	"time"

	"github.com/google/uuid"
)

const ItemsPerPage = 5

type LoanableStatus string

const (
	StatusAvailableOnSite LoanableStatus = "available on site"
	StatusLoanable        LoanableStatus = "loanable"
)

type Book struct {
	ID                uuid.UUID      `json:"id" db:"id"`
	Title             string         `json:"title" db:"title"`
	Author            *string        `json:"author" db:"author"`
	EditionName       *string        `json:"editionName" db:"edition_name"`
	YearOfPublication *int           `json:"yearOfPublication" db:"year_of_publication"`
	EAN13             *int64         `json:"ean13" db:"ean13"`
	CopyNum           int            `json:"copyNum" db:"copy_num"`
	LoanableStatus    LoanableStatus `json:"loanableStatus" db:"loanable_status"`
	Summary           *string        `json:"summary" db:"summary"`
	CoverURL          *string        `json:"coverURL" db:"cover_url"`
	GenreID           *uuid.UUID     `json:"genre" db:"genre_id"`
	CreatedAt         time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time      `json:"updatedAt" db:"updated_at"`
}

type Member struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Genre struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Category string    `json:"category" db:"category"`
	Name     string    `json:"name" db:"name"`
}

type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// UserInfo is what login and session resolution hand out.
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Info() UserInfo {
	return UserInfo{ID: u.ID.String(), Name: u.Name, Email: u.Email}
}

type LoanStatus string

const (
	LoanOnLoan   LoanStatus = "on loan"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

type Loan struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	BookID     uuid.UUID  `json:"bookId" db:"book_id"`
	MemberID   uuid.UUID  `json:"memberId" db:"member_id"`
	BookTitle  string     `json:"bookTitle" db:"book_title"`
	MemberName string     `json:"memberName" db:"member_name"`
	LoanedAt   time.Time  `json:"loanedAt" db:"loaned_at"`
	DueAt      time.Time  `json:"dueAt" db:"due_at"`
	ReturnedAt *time.Time `json:"returnedAt" db:"returned_at"`
	Status     LoanStatus `json:"status" db:"-"`
}

func (l Loan) StatusAt(now time.Time) LoanStatus {
	switch {
	case l.ReturnedAt != nil:
		return LoanReturned
	case now.After(l.DueAt):
		return LoanOverdue
	default:
		return LoanOnLoan
	}
}

type Paging struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// TotalPages is ceil(count / ItemsPerPage).
func TotalPages(count int) int {
	return (count + ItemsPerPage - 1) / ItemsPerPage
}

type ListBooks struct {
	Paging `json:",inline"`
	Query  string `json:"query"`
	Items  []Book `json:"items"`
}

type ListMembers struct {
	Paging `json:",inline"`
	Query  string   `json:"query"`
	Items  []Member `json:"items"`
}

type ListLoans struct {
	Paging `json:",inline"`
	Items  []Loan `json:"items"`
}

type DashboardCounts struct {
	Books   int `json:"books"`
	Members int `json:"members"`
	Loans   int `json:"loans"`
}

type Dashboard struct {
	User   *UserInfo       `json:"user"`
	Counts DashboardCounts `json:"counts"`
}

type BookEditPage struct {
	Book   Book    `json:"book"`
	Loans  []Loan  `json:"loans"`
	Genres []Genre `json:"genres"`
}

type BookCreatePage struct {
	Genres []Genre `json:"genres"`
}

type MutationAction string

const (
	ActionCreated MutationAction = "created"
	ActionUpdated MutationAction = "updated"
	ActionDeleted MutationAction = "deleted"
)

type MutationEvent struct {
	Entity string         `json:"entity"`
	Action MutationAction `json:"action"`
	ID     string         `json:"id"`
	At     time.Time      `json:"at"`
}
