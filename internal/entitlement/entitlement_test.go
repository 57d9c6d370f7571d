package entitlement

import (
	"context"
	"errors"
	"testing"
)

func TestStaticChecker(t *testing.T) {
	pro, err := (&StaticChecker{Result: true}).IsPro(context.Background(), "user-1")
	if err != nil || !pro {
		t.Fatalf("IsPro = (%v, %v)", pro, err)
	}

	wantErr := errors.New("down")
	if _, err := (&StaticChecker{Err: wantErr}).IsPro(context.Background(), "user-1"); !errors.Is(err, wantErr) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRedisCheckerEmptyUserID(t *testing.T) {
	// 空のユーザーIDはRedisに問い合わせず即座に非Proとする
	checker := NewRedisChecker(nil, "")
	pro, err := checker.IsPro(context.Background(), "")
	if err != nil {
		t.Fatalf("IsPro returned error: %v", err)
	}
	if pro {
		t.Fatal("empty user id must not be pro")
	}
}
