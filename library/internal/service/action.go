package service

import (
	"context"
	"strings"

	"github.com/Astemirdum/my-little-library/library/internal/errs"
	"github.com/Astemirdum/my-little-library/library/internal/model"
	"github.com/Astemirdum/my-little-library/pkg/kafka"
	"github.com/Astemirdum/my-little-library/pkg/validate"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	msgBookNotFound      = "Book not found"
	msgMemberNotFound    = "Member not found"
	msgEmailTaken        = "Email already registered"
	msgEmailTakenByOther = "Email already registered to another member"
	msgInvalidGenre      = "Please select a valid genre"

	msgCreateBookFailed   = "Database Error: Failed to Create Book in MyLittleLibrary."
	msgUpdateBookFailed   = "Database Error: Failed to update book"
	msgDeleteBookFailed   = "Database Error: Failed to delete book"
	msgCreateMemberFailed = "Database Error: Failed to Create Member in MyLittleLibrary."
	msgUpdateMemberFailed = "Database Error: Failed to update member"
	msgDeleteMemberFailed = "Database Error: Failed to delete member"
)

func bookFromForm(f model.BookForm) model.Book {
	b := model.Book{
		Title:             f.Title,
		Author:            f.Author,
		EditionName:       f.EditionName,
		YearOfPublication: f.YearOfPublication,
		EAN13:             f.EAN13,
		LoanableStatus:    model.LoanableStatus(f.LoanableStatus),
		Summary:           f.Summary,
		CoverURL:          f.CoverURL,
	}
	if f.CopyNum != nil {
		b.CopyNum = *f.CopyNum
	}
	if f.Genre != nil {
		// the form rule guarantees a uuid
		if id, err := uuid.Parse(*f.Genre); err == nil {
			b.GenreID = &id
		}
	}
	return b
}

// invalidGenre is the result for a genre id with no genre row behind it.
func invalidGenre() model.ActionResult {
	fieldErrs := validate.FieldErrors{}
	fieldErrs.Add("genre", msgInvalidGenre)
	return model.Invalid(fieldErrs)
}

func memberFromForm(f model.MemberForm) model.Member {
	return model.Member{
		Name:    f.Name,
		Email:   strings.ToLower(f.Email),
		Phone:   f.Phone,
		Address: f.Address,
	}
}

// storageFailure logs the cause and hides it behind msg.
func (s *Service) storageFailure(op string, err error, msg string) model.ActionResult {
	s.log.Error(op, zap.Error(err))
	return model.Failure(model.ReasonStorage, msg)
}

// committed runs after a successful mutation.
func (s *Service) committed(ctx context.Context, scope, topic string, action model.MutationAction, id uuid.UUID) {
	if err := s.cache.Invalidate(ctx, scope); err != nil {
		s.log.Warn("cache invalidate", zap.String("scope", scope), zap.Error(err))
	}
	ev := model.MutationEvent{
		Entity: scope,
		Action: action,
		ID:     id.String(),
		At:     s.now().UTC(),
	}
	if err := s.events.Publish(topic, ev.ID, ev); err != nil {
		s.log.Warn("publish mutation event", zap.String("topic", topic), zap.Error(err))
	}
}

func (s *Service) CreateBook(ctx context.Context, raw map[string]string) model.ActionResult {
	var form model.BookForm
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return model.Invalid(fieldErrs)
	}
	id, err := s.repo.CreateBook(ctx, bookFromForm(form))
	if err != nil {
		if errors.Is(err, errs.ErrValidation) {
			return invalidGenre()
		}
		return s.storageFailure("CreateBook", err, msgCreateBookFailed)
	}
	s.committed(ctx, booksScope, kafka.BooksTopic, model.ActionCreated, id)
	return model.Ok(id.String())
}

func (s *Service) UpdateBook(ctx context.Context, id string, raw map[string]string) model.ActionResult {
	var form model.BookForm
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return model.Invalid(fieldErrs)
	}
	uid, err := parseID(id)
	if err != nil {
		return model.Failure(model.ReasonNotFound, msgBookNotFound)
	}
	book := bookFromForm(form)
	book.ID = uid
	if err := s.repo.UpdateBook(ctx, book); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return model.Failure(model.ReasonNotFound, msgBookNotFound)
		case errors.Is(err, errs.ErrValidation):
			return invalidGenre()
		}
		return s.storageFailure("UpdateBook", err, msgUpdateBookFailed)
	}
	s.committed(ctx, booksScope, kafka.BooksTopic, model.ActionUpdated, uid)
	return model.Ok("book updated")
}

func (s *Service) DeleteBook(ctx context.Context, id string) model.ActionResult {
	uid, err := parseID(id)
	if err != nil {
		return model.Failure(model.ReasonNotFound, msgBookNotFound)
	}
	if err := s.repo.DeleteBook(ctx, uid); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Failure(model.ReasonNotFound, msgBookNotFound)
		}
		return s.storageFailure("DeleteBook", err, msgDeleteBookFailed)
	}
	s.committed(ctx, booksScope, kafka.BooksTopic, model.ActionDeleted, uid)
	return model.Ok("book deleted")
}

func (s *Service) CreateMember(ctx context.Context, raw map[string]string) model.ActionResult {
	var form model.MemberForm
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return model.Invalid(fieldErrs)
	}
	member := memberFromForm(form)

	taken, err := s.repo.MemberEmailExists(ctx, member.Email, uuid.Nil)
	if err != nil {
		return s.storageFailure("CreateMember", err, msgCreateMemberFailed)
	}
	if taken {
		return model.Failure(model.ReasonConflict, msgEmailTaken)
	}
	id, err := s.repo.CreateMember(ctx, member)
	if err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return model.Failure(model.ReasonConflict, msgEmailTaken)
		}
		return s.storageFailure("CreateMember", err, msgCreateMemberFailed)
	}
	s.committed(ctx, membersScope, kafka.MembersTopic, model.ActionCreated, id)
	return model.Ok(id.String())
}

func (s *Service) UpdateMember(ctx context.Context, id string, raw map[string]string) model.ActionResult {
	var form model.MemberForm
	if fieldErrs := validate.Parse(raw, &form); len(fieldErrs) > 0 {
		return model.Invalid(fieldErrs)
	}
	uid, err := parseID(id)
	if err != nil {
		return model.Failure(model.ReasonNotFound, msgMemberNotFound)
	}
	if _, err := s.repo.GetMember(ctx, uid); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Failure(model.ReasonNotFound, msgMemberNotFound)
		}
		return s.storageFailure("UpdateMember", err, msgUpdateMemberFailed)
	}
	member := memberFromForm(form)
	member.ID = uid

	taken, err := s.repo.MemberEmailExists(ctx, member.Email, uid)
	if err != nil {
		return s.storageFailure("UpdateMember", err, msgUpdateMemberFailed)
	}
	if taken {
		return model.Failure(model.ReasonConflict, msgEmailTakenByOther)
	}
	if err := s.repo.UpdateMember(ctx, member); err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			return model.Failure(model.ReasonNotFound, msgMemberNotFound)
		case errors.Is(err, errs.ErrConflict):
			return model.Failure(model.ReasonConflict, msgEmailTakenByOther)
		}
		return s.storageFailure("UpdateMember", err, msgUpdateMemberFailed)
	}
	s.committed(ctx, membersScope, kafka.MembersTopic, model.ActionUpdated, uid)
	return model.Ok("member updated")
}

func (s *Service) DeleteMember(ctx context.Context, id string) model.ActionResult {
	uid, err := parseID(id)
	if err != nil {
		return model.Failure(model.ReasonNotFound, msgMemberNotFound)
	}
	if err := s.repo.DeleteMember(ctx, uid); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Failure(model.ReasonNotFound, msgMemberNotFound)
		}
		return s.storageFailure("DeleteMember", err, msgDeleteMemberFailed)
	}
	s.committed(ctx, membersScope, kafka.MembersTopic, model.ActionDeleted, uid)
	return model.Ok("member deleted")
}
