package service

import (
	"context"
	"strings"

	"carmarket/internal/models"
	"carmarket/internal/policy"
	"carmarket/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	listingRepo repository.ListingRepository
}

type CreateCommentInput struct {
	ListingID uint
	Content   string
}

type UpdateCommentInput struct {
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	listingRepo repository.ListingRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		listingRepo: listingRepo,
	}
}

const maxCommentLen = 2000

// CreateComment posts a comment on a listing the actor is allowed to see.
// The author is always the actor; client-supplied user IDs are ignored.
func (s *CommentService) CreateComment(ctx context.Context, actor *models.User, in CreateCommentInput) (*models.Comment, error) {
	if err := policy.CanComment(actor); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewListing(actor, listing) {
		return nil, models.NewNotFoundError("Listing", in.ListingID)
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewFieldValidationError(map[string][]string{
			"content": {"The content field is required."},
		})
	}
	if len(content) > maxCommentLen {
		return nil, models.NewFieldValidationError(map[string][]string{
			"content": {"The content may not be greater than 2000 characters."},
		})
	}

	comment := &models.Comment{
		ListingID: in.ListingID,
		UserID:    actor.ID,
		Content:   content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns the comments on a listing visible to the actor.
func (s *CommentService) ListComments(ctx context.Context, actor *models.User, listingID uint, limit, offset int) ([]*models.Comment, error) {
	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewListing(actor, listing) {
		return nil, models.NewNotFoundError("Listing", listingID)
	}
	return s.commentRepo.GetByListingID(ctx, listingID, limit, offset)
}

// ListAllComments returns recent comments across all listings, newest first.
func (s *CommentService) ListAllComments(ctx context.Context, limit, offset int) ([]*models.Comment, error) {
	return s.commentRepo.List(ctx, limit, offset)
}

// GetComment returns one comment, gated by the parent listing's visibility.
func (s *CommentService) GetComment(ctx context.Context, actor *models.User, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	listing, err := s.listingRepo.GetByID(ctx, comment.ListingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewListing(actor, listing) {
		return nil, models.NewNotFoundError("Comment", commentID)
	}
	return comment, nil
}

// UpdateComment edits a comment's content for its author or an admin.
func (s *CommentService) UpdateComment(ctx context.Context, actor *models.User, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := policy.CanModifyComment(actor, comment); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewFieldValidationError(map[string][]string{
			"content": {"The content field is required."},
		})
	}
	if len(content) > maxCommentLen {
		return nil, models.NewFieldValidationError(map[string][]string{
			"content": {"The content may not be greater than 2000 characters."},
		})
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.commentRepo.GetByID(ctx, comment.ID)
}

// DeleteComment removes a comment for its author or an admin.
func (s *CommentService) DeleteComment(ctx context.Context, actor *models.User, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := policy.CanModifyComment(actor, comment); err != nil {
		return err
	}
	return s.commentRepo.Delete(ctx, commentID)
}

// AdminDeleteComment permanently removes a comment, bypassing ownership.
// Used for moderation sweeps.
func (s *CommentService) AdminDeleteComment(ctx context.Context, actor *models.User, commentID uint) error {
	if err := policy.CanModerate(actor); err != nil {
		return err
	}
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		return err
	}
	return s.commentRepo.HardDelete(ctx, commentID)
}
