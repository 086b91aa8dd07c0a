// Package rpc describes the VaultService wire contract shared by the gRPC
// server and client: the service and method names and the field layout of
// the structpb request and response bodies.
package rpc

import (
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "passvault.v1.VaultService"

const (
	MethodRegister       = "Register"
	MethodLogin          = "Login"
	MethodLogout         = "Logout"
	MethodMe             = "Me"
	MethodCreateItem     = "CreateItem"
	MethodListItems      = "ListItems"
	MethodDeleteItem     = "DeleteItem"
	MethodRetrieveSecret = "RetrieveSecret"
	MethodPing           = "Ping"
)

// Body field names.
const (
	FieldID         = "id"
	FieldUserName   = "username"
	FieldPassword   = "password"
	FieldTopicName  = "topicName"
	FieldIsFavorite = "isFavorite"
	FieldCreatedAt  = "createdAt"
	FieldToken      = "token"
	FieldAccount    = "account"
	FieldItem       = "item"
	FieldItems      = "items"
	FieldStatus     = "status"
)

// FullMethod returns the gRPC path for method, e.g. "/passvault.v1.VaultService/Login".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods are callable without a session token.
var PublicMethods = map[string]bool{
	FullMethod(MethodRegister): true,
	FullMethod(MethodLogin):    true,
	FullMethod(MethodPing):     true,
}

// AnswerField returns the body key of the i-th (zero based) security answer.
func AnswerField(i int) string {
	return "answer" + string(rune('1'+i))
}

// String returns the string value at key, or "" when it is absent or not a string.
func String(s *structpb.Struct, key string) string {
	if s == nil {
		return ""
	}
	v, ok := s.GetFields()[key]
	if !ok {
		return ""
	}
	return v.GetStringValue()
}

// Bool returns the bool value at key, or false.
func Bool(s *structpb.Struct, key string) bool {
	if s == nil {
		return false
	}
	return s.GetFields()[key].GetBoolValue()
}

// Struct returns the nested struct at key, or nil.
func Struct(s *structpb.Struct, key string) *structpb.Struct {
	if s == nil {
		return nil
	}
	return s.GetFields()[key].GetStructValue()
}

// Answers reads answer1..answer3.
func Answers(s *structpb.Struct) [common.SecurityAnswerCount]string {
	var out [common.SecurityAnswerCount]string
	for i := range out {
		out[i] = String(s, AnswerField(i))
	}
	return out
}

// SetAnswers writes answer1..answer3 into fields.
func SetAnswers(fields map[string]any, answers [common.SecurityAnswerCount]string) {
	for i, a := range answers {
		fields[AnswerField(i)] = a
	}
}

// FormatTime renders timestamps on the wire.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTime is the inverse of FormatTime; malformed values give the zero time.
func ParseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
