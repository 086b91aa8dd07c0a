package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/rpc"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) Register(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Registration request")

	account, token, err := s.accounts.Register(ctx,
		rpc.String(req, rpc.FieldUserName),
		rpc.String(req, rpc.FieldPassword),
		rpc.Answers(req),
	)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "account_id", account.ID)
	return sessionResponse(account, token)
}

func (s *GRPCServer) Login(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	userName, password := rpc.String(req, rpc.FieldUserName), rpc.String(req, rpc.FieldPassword)
	if strings.TrimSpace(userName) == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "username and password are required")
	}

	account, token, err := s.accounts.Login(ctx, userName, password)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return sessionResponse(account, token)
}

func (s *GRPCServer) Logout(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	if err := s.accounts.Logout(ctx, tokenFromContext(ctx)); err != nil {
		return nil, s.mapError(ctx, err)
	}

	return structpb.NewStruct(map[string]any{rpc.FieldStatus: "OK"})
}

func (s *GRPCServer) Me(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, errNotAuthenticated
	}

	account, err := s.accounts.AccountByID(ctx, accountID)
	if errors.Is(err, common.ErrInvalidCredentials) {
		// the token outlived its account
		return nil, errNotAuthenticated
	}
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return structpb.NewStruct(map[string]any{rpc.FieldAccount: accountFields(account)})
}

func (s *GRPCServer) CreateItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, errNotAuthenticated
	}

	secret := rpc.String(req, rpc.FieldPassword)
	if secret == "" {
		return nil, status.Error(codes.InvalidArgument, "password is required")
	}

	item, err := s.vault.CreateItem(ctx, accountID, rpc.String(req, rpc.FieldTopicName), secret, rpc.Bool(req, rpc.FieldIsFavorite))
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return structpb.NewStruct(map[string]any{rpc.FieldItem: itemFields(item)})
}

func (s *GRPCServer) ListItems(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, errNotAuthenticated
	}

	list, err := s.vault.ListItems(ctx, accountID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	items := make([]any, 0, len(list))
	for _, item := range list {
		items = append(items, itemFields(item))
	}

	return structpb.NewStruct(map[string]any{rpc.FieldItems: items})
}

func (s *GRPCServer) DeleteItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, errNotAuthenticated
	}

	if err := s.vault.DeleteItem(ctx, accountID, rpc.String(req, rpc.FieldID)); err != nil {
		return nil, s.mapError(ctx, err)
	}

	return structpb.NewStruct(map[string]any{rpc.FieldStatus: "OK"})
}

func (s *GRPCServer) RetrieveSecret(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	accountID, ok := accountIDFromContext(ctx)
	if !ok {
		return nil, errNotAuthenticated
	}

	answers := rpc.Answers(req)
	for _, a := range answers {
		if strings.TrimSpace(a) == "" {
			return nil, status.Error(codes.InvalidArgument, "all security answers are required")
		}
	}

	revealed, err := s.vault.RetrieveSecret(ctx, accountID, rpc.String(req, rpc.FieldID), answers)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}

	return structpb.NewStruct(map[string]any{
		rpc.FieldPassword:  revealed.Secret,
		rpc.FieldTopicName: revealed.TopicName,
	})
}

func (s *GRPCServer) Ping(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {

	return structpb.NewStruct(map[string]any{rpc.FieldStatus: "OK"})

}

// mapError converts service errors to gRPC statuses. Anything unexpected is
// logged and reported as a bare internal error.
func (s *GRPCServer) mapError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrDuplicateUsername):
		return status.Error(codes.AlreadyExists, common.ErrDuplicateUsername.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		return status.Error(codes.Unauthenticated, common.ErrInvalidCredentials.Error())
	case common.IsTokenError(err), errors.Is(err, common.ErrNotAuthenticated):
		return errNotAuthenticated
	case errors.Is(err, common.ErrNotFoundOrForbidden):
		return status.Error(codes.NotFound, common.ErrNotFoundOrForbidden.Error())
	case errors.Is(err, common.ErrSecurityAnswerMismatch):
		return status.Error(codes.PermissionDenied, common.ErrSecurityAnswerMismatch.Error())
	case errors.Is(err, common.ErrorValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		if !errors.Is(err, common.ErrorInternal) {
			s.logger.Error(ctx, "unexpected service error", "error", err)
		}
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}

func sessionResponse(account *models.AccountView, token string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		rpc.FieldAccount: accountFields(account),
		rpc.FieldToken:   token,
	})
}

func accountFields(a *models.AccountView) map[string]any {
	return map[string]any{
		rpc.FieldID:        a.ID,
		rpc.FieldUserName:  a.UserName,
		rpc.FieldCreatedAt: rpc.FormatTime(a.CreatedAt),
	}
}

func itemFields(m *models.ItemMetadata) map[string]any {
	return map[string]any{
		rpc.FieldID:         m.ID,
		rpc.FieldTopicName:  m.TopicName,
		rpc.FieldIsFavorite: m.IsFavorite,
		rpc.FieldCreatedAt:  rpc.FormatTime(m.CreatedAt),
	}
}
