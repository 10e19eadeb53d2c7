package user

import (
	"context"
	"strings"
	"testing"

	emailsvc "github.com/pcacademy/backend/services/email"
	"github.com/pcacademy/backend/storage/docstore/inmem"
)

func newTestService() *Service {
	return NewService(NewRepository(inmem.NewStore()), emailsvc.NewConsoleServiceMock())
}

func createTestUser(t *testing.T, svc *Service, name, email string) User {
	t.Helper()
	usr, err := svc.Create(context.Background(), NewUser{
		Name:            name,
		Email:           email,
		Password:        "Str0ngPassw0rd",
		PasswordConfirm: "Str0ngPassw0rd",
	})
	if err != nil {
		t.Fatalf("creating user failed: %v", err)
	}
	return usr
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	usr := createTestUser(t, svc, "Jane", "jane@example.com")
	if usr.ID == "" || !usr.IsActive {
		t.Errorf("usr = %+v; want an active user with an id", usr)
	}
	if err := usr.CheckPassword("Str0ngPassw0rd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := usr.CheckPassword("wrong"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}

	// uniqueness is enforced through NewUser validation
	nu := NewUser{Name: "Jane Again", Email: "jane@example.com", Password: "Str0ngPassw0rd", PasswordConfirm: "Str0ngPassw0rd"}
	if err := nu.Validate(svc); err == nil {
		t.Error("Validate() accepted a duplicate email")
	}

	got, err := svc.GetByEmail(ctx, "Jane@Example.COM")
	if err != nil || got.ID != usr.ID {
		t.Errorf("GetByEmail() = (%+v, %v); lookup should be case-insensitive", got, err)
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	usr := createTestUser(t, svc, "Jane", "jane@example.com")

	uu := UpdateUser{Name: "Jane D.", Password: "NewPassw0rd!", PasswordConfirm: "NewPassw0rd!"}
	if err := uu.Validate(usr); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	updated, err := svc.Update(ctx, usr.ID, uu)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "Jane D." {
		t.Errorf("name = %q; want %q", updated.Name, "Jane D.")
	}
	if err = updated.CheckPassword("NewPassw0rd!"); err != nil {
		t.Errorf("CheckPassword() after update failed: %v", err)
	}

	// omitting the name keeps the existing one
	uu = UpdateUser{}
	if err = uu.Validate(updated); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if uu.Name != "Jane D." {
		t.Errorf("Validate() should default the name to the current one; got %q", uu.Name)
	}
}

func TestService_passwordResetFlow(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	usr := createTestUser(t, svc, "Jane", "jane@example.com")

	if err := svc.RequestPasswordReset(ctx, usr.Email); err != nil {
		t.Fatalf("RequestPasswordReset() failed: %v", err)
	}
	var resetMail string
	for _, msg := range emailsvc.SentMessages {
		if msg.Subject == "Password Reset" && strings.Contains(msg.TextContent, "reset-password?uid=") {
			resetMail = msg.TextContent
		}
	}
	if resetMail == "" {
		t.Fatal("no password reset email was sent")
	}

	token, err := MakeToken(usr)
	if err != nil {
		t.Fatalf("MakeToken() failed: %v", err)
	}
	err = svc.ConfirmPasswordReset(ctx, ResetUserPassword{
		Token:           token,
		UID:             EncodeUID(usr),
		Password:        "BrandNewPwd1",
		PasswordConfirm: "BrandNewPwd1",
	})
	if err != nil {
		t.Fatalf("ConfirmPasswordReset() failed: %v", err)
	}

	updated, err := svc.GetByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if err = updated.CheckPassword("BrandNewPwd1"); err != nil {
		t.Errorf("new password not set: %v", err)
	}

	// the used token no longer verifies: the password hash changed
	err = svc.ConfirmPasswordReset(ctx, ResetUserPassword{
		Token:           token,
		UID:             EncodeUID(usr),
		Password:        "AnotherPwd22",
		PasswordConfirm: "AnotherPwd22",
	})
	if err == nil {
		t.Error("ConfirmPasswordReset() accepted a stale token")
	}
}
