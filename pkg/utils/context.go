package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	MemberIDKey contextKey = "member_id"
	TokenKey    contextKey = "token"
)

func GetMemberIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	memberIDVal := ctx.Value(MemberIDKey)
	if memberIDVal == nil {
		return uuid.Nil, false
	}

	memberIDStr, ok := memberIDVal.(string)
	if !ok {
		return uuid.Nil, false
	}

	memberID, err := uuid.Parse(memberIDStr)
	if err != nil {
		return uuid.Nil, false
	}

	return memberID, true
}

func SetMemberContext(ctx context.Context, memberID uuid.UUID) context.Context {
	return context.WithValue(ctx, MemberIDKey, memberID.String())
}

func GetTokenFromContext(ctx context.Context) (string, bool) {
	tokenVal := ctx.Value(TokenKey)
	if tokenVal == nil {
		return "", false
	}

	token, ok := tokenVal.(string)
	return token, ok
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
