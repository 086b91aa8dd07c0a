package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/passvault/internal/client/models"
	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" && !rpc.PublicMethods[method] {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient connects to endpointURL. Extra dial options are appended
// after the defaults (insecure transport and the token interceptor).
func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// SetToken sets the session token sent with authenticated calls.
func (s *GRPCClient) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) invoke(ctx context.Context, method string, fields map[string]any) (*structpb.Struct, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	out := new(structpb.Struct)
	if err := s.conn.Invoke(ctx, rpc.FullMethod(method), in, out); err != nil {
		return nil, s.mapError(err)
	}
	return out, nil
}

func (s *GRPCClient) Register(ctx context.Context, userName, password string, answers [common.SecurityAnswerCount]string) (*models.Account, string, error) {

	fields := map[string]any{rpc.FieldUserName: userName, rpc.FieldPassword: password}
	rpc.SetAnswers(fields, answers)

	resp, err := s.invoke(ctx, rpc.MethodRegister, fields)
	if err != nil {
		return nil, "", err
	}

	return s.session(resp)
}

func (s *GRPCClient) Login(ctx context.Context, userName, password string) (*models.Account, string, error) {

	resp, err := s.invoke(ctx, rpc.MethodLogin, map[string]any{rpc.FieldUserName: userName, rpc.FieldPassword: password})
	if err != nil {
		return nil, "", err
	}

	return s.session(resp)
}

func (s *GRPCClient) Logout(ctx context.Context) error {
	_, err := s.invoke(ctx, rpc.MethodLogout, nil)
	if err == nil {
		s.SetToken("")
	}
	return err
}

func (s *GRPCClient) Me(ctx context.Context) (*models.Account, error) {
	resp, err := s.invoke(ctx, rpc.MethodMe, nil)
	if err != nil {
		return nil, err
	}
	return accountFromStruct(rpc.Struct(resp, rpc.FieldAccount)), nil
}

func (s *GRPCClient) CreateItem(ctx context.Context, topicName, secret string, isFavorite bool) (*models.Item, error) {
	resp, err := s.invoke(ctx, rpc.MethodCreateItem, map[string]any{
		rpc.FieldTopicName:  topicName,
		rpc.FieldPassword:   secret,
		rpc.FieldIsFavorite: isFavorite,
	})
	if err != nil {
		return nil, err
	}
	return itemFromStruct(rpc.Struct(resp, rpc.FieldItem)), nil
}

func (s *GRPCClient) ListItems(ctx context.Context) ([]*models.Item, error) {
	resp, err := s.invoke(ctx, rpc.MethodListItems, nil)
	if err != nil {
		return nil, err
	}

	values := resp.GetFields()[rpc.FieldItems].GetListValue().GetValues()
	items := make([]*models.Item, 0, len(values))
	for _, v := range values {
		items = append(items, itemFromStruct(v.GetStructValue()))
	}
	return items, nil
}

func (s *GRPCClient) DeleteItem(ctx context.Context, id string) error {
	_, err := s.invoke(ctx, rpc.MethodDeleteItem, map[string]any{rpc.FieldID: id})
	return err
}

func (s *GRPCClient) RetrieveSecret(ctx context.Context, id string, answers [common.SecurityAnswerCount]string) (*models.Secret, error) {
	fields := map[string]any{rpc.FieldID: id}
	rpc.SetAnswers(fields, answers)

	resp, err := s.invoke(ctx, rpc.MethodRetrieveSecret, fields)
	if err != nil {
		return nil, err
	}
	return &models.Secret{
		TopicName: rpc.String(resp, rpc.FieldTopicName),
		Password:  rpc.String(resp, rpc.FieldPassword),
	}, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.invoke(ctx, rpc.MethodPing, nil)
	if err != nil {
		return err
	}

	if rpc.String(resp, rpc.FieldStatus) != "OK" {
		return ErrUnavailable
	}

	return nil

}

// session stores the returned token and decodes the account.
func (s *GRPCClient) session(resp *structpb.Struct) (*models.Account, string, error) {
	token := rpc.String(resp, rpc.FieldToken)
	if token == "" {
		return nil, "", fmt.Errorf("server returned no session token")
	}
	s.SetToken(token)
	return accountFromStruct(rpc.Struct(resp, rpc.FieldAccount)), token, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		if st.Message() == ErrBadCredentials.Error() {
			return ErrBadCredentials
		}
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrWrongAnswers
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrAlreadyExists
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidArgument, st.Message())
	case codes.ResourceExhausted:
		return ErrRateLimited
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func accountFromStruct(s *structpb.Struct) *models.Account {
	return &models.Account{
		ID:        rpc.String(s, rpc.FieldID),
		UserName:  rpc.String(s, rpc.FieldUserName),
		CreatedAt: rpc.ParseTime(rpc.String(s, rpc.FieldCreatedAt)),
	}
}

func itemFromStruct(s *structpb.Struct) *models.Item {
	return &models.Item{
		ID:         rpc.String(s, rpc.FieldID),
		TopicName:  rpc.String(s, rpc.FieldTopicName),
		IsFavorite: rpc.Bool(s, rpc.FieldIsFavorite),
		CreatedAt:  rpc.ParseTime(rpc.String(s, rpc.FieldCreatedAt)),
	}
}
