package session

// Тесты хранилища сессии.
//
//  Проверяем:
//  - вход администратора без строки профиля (эфемерная сессия, 9999 очков);
//  - вход администратора с существующей строкой профиля;
//  - отказ в доступе, блокировку inactive и сетевую ошибку;
//  - регистрацию (неполная форма, занятый username, успешный вход);
//  - переключение режима просмотра и восстановление снимка.
//
// Примечание: моки сгенерированы в пакете /mocks (MockProfiles, MockKV).

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/haroldove90-spec/Cowele/internal/config"
	"github.com/haroldove90-spec/Cowele/internal/models"
	"github.com/haroldove90-spec/Cowele/internal/storage"
	"github.com/haroldove90-spec/Cowele/mocks"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newStoreWithMocks(t *testing.T) (*Store, *mocks.MockProfiles, *mocks.MockKV) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mp := mocks.NewMockProfiles(ctrl)
	kv := mocks.NewMockKV(ctrl)
	return New(mp, kv, NewRoster(config.DefaultAdmins())), mp, kv
}

func TestLogin_SynthesizedAdmin(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)
	ctx := context.Background()

	mp.EXPECT().ProfileByUsername(gomock.Any(), "harold_anguiano").Return(nil, storage.ErrNotFound)
	kv.EXPECT().Set(gomock.Any(), storage.SessionKey, gomock.Any()).Return(nil)

	sess, err := s.Login(ctx, "  Harold_Anguiano ", "123_admin")
	require.NoError(t, err)
	require.Equal(t, models.SessionEphemeral, sess.Kind)
	require.Equal(t, "admin-harold_anguiano", sess.Profile.ID)
	require.Equal(t, "Harold Anguiano", sess.Profile.FullName)
	require.Equal(t, 9999, sess.Profile.Points)
	require.True(t, sess.IsRealAdmin)
	require.True(t, s.IsAdminAuthorized())
}

func TestLogin_AdminWithProfileRow(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)

	row := &models.Profile{ID: "p-1", Username: "daniel_herrera", Points: 15, Status: models.ProfileActive}
	mp.EXPECT().ProfileByUsername(gomock.Any(), "daniel_herrera").Return(row, nil)
	kv.EXPECT().Set(gomock.Any(), storage.SessionKey, gomock.Any()).Return(nil)

	sess, err := s.Login(context.Background(), "daniel_herrera", "123_admin")
	require.NoError(t, err)
	require.Equal(t, models.SessionPersisted, sess.Kind)
	require.Equal(t, "p-1", sess.Profile.ID)
	require.True(t, sess.IsRealAdmin)
}

func TestLogin_AdminLookupFailureFallsBackToRoster(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)

	mp.EXPECT().ProfileByUsername(gomock.Any(), "harold_anguiano").Return(nil, errors.New("timeout"))
	kv.EXPECT().Set(gomock.Any(), storage.SessionKey, gomock.Any()).Return(nil)

	sess, err := s.Login(context.Background(), "harold_anguiano", "123_admin")
	require.NoError(t, err)
	require.Equal(t, models.SessionEphemeral, sess.Kind)
}

func TestLogin_WrongAdminPasswordGoesToTable(t *testing.T) {
	s, mp, _ := newStoreWithMocks(t)

	mp.EXPECT().ProfileByCredentials(gomock.Any(), "harold_anguiano", "nope").Return(nil, storage.ErrNotFound)

	_, err := s.Login(context.Background(), "harold_anguiano", "nope")
	require.ErrorIs(t, err, ErrAuthDenied)

	_, ok := s.Current()
	require.False(t, ok)
}

func TestLogin_Blocked(t *testing.T) {
	s, mp, _ := newStoreWithMocks(t)

	mp.EXPECT().ProfileByCredentials(gomock.Any(), "alice", "p").
		Return(&models.Profile{ID: "a", Username: "alice", Status: models.ProfileInactive}, nil)

	_, err := s.Login(context.Background(), "alice", "p")
	require.ErrorIs(t, err, ErrAccountBlocked)

	_, ok := s.Current()
	require.False(t, ok, "blocked account never becomes a session")
}

func TestLogin_NetworkFailure(t *testing.T) {
	s, mp, _ := newStoreWithMocks(t)

	mp.EXPECT().ProfileByCredentials(gomock.Any(), "alice", "p").Return(nil, errors.New("dial tcp: refused"))

	_, err := s.Login(context.Background(), "alice", "p")
	require.ErrorIs(t, err, ErrNetworkFailure)
}

func TestRegister(t *testing.T) {
	t.Run("incomplete", func(t *testing.T) {
		s, _, _ := newStoreWithMocks(t)

		for _, in := range [][3]string{{"", "p", "n"}, {"u", "", "n"}, {"u", "p", "  "}, {"   ", "p", "n"}} {
			_, err := s.Register(context.Background(), in[0], in[1], in[2])
			require.ErrorIs(t, err, ErrIncompleteForm)
		}
	})

	t.Run("exists", func(t *testing.T) {
		s, mp, _ := newStoreWithMocks(t)

		mp.EXPECT().CreateProfile(gomock.Any(), storage.NewProfile{Username: "bob", Password: "p", FullName: "Bob"}).
			Return(nil, storage.ErrAlreadyExists)

		_, err := s.Register(context.Background(), "BOB", "p", "Bob")
		require.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("ok logs in", func(t *testing.T) {
		s, mp, kv := newStoreWithMocks(t)

		mp.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).
			Return(&models.Profile{ID: "b", Username: "bob", FullName: "Bob", Status: models.ProfileActive}, nil)
		kv.EXPECT().Set(gomock.Any(), storage.SessionKey, gomock.Any()).Return(nil)

		sess, err := s.Register(context.Background(), "bob", "p", "Bob")
		require.NoError(t, err)
		require.Equal(t, models.SessionPersisted, sess.Kind)
		require.False(t, sess.IsRealAdmin)
	})
}

func TestToggleViewAsUser(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)
	ctx := context.Background()

	_, err := s.ToggleViewAsUser(ctx)
	require.ErrorIs(t, err, ErrNotLoggedIn)

	mp.EXPECT().ProfileByUsername(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
	kv.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err = s.Login(ctx, "harold_anguiano", "123_admin")
	require.NoError(t, err)

	sess, err := s.ToggleViewAsUser(ctx)
	require.NoError(t, err)
	require.True(t, sess.ViewForcedAsUser)
	require.True(t, sess.IsRealAdmin)
	require.False(t, s.IsAdminAuthorized())

	sess, err = s.ToggleViewAsUser(ctx)
	require.NoError(t, err)
	require.False(t, sess.ViewForcedAsUser)
	require.True(t, s.IsAdminAuthorized())
}

func TestToggleViewAsUser_NonAdminNoop(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)
	ctx := context.Background()

	mp.EXPECT().ProfileByCredentials(gomock.Any(), "alice", "p").
		Return(&models.Profile{ID: "a", Username: "alice", Status: models.ProfileActive}, nil)
	kv.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.Login(ctx, "alice", "p")
	require.NoError(t, err)

	sess, err := s.ToggleViewAsUser(ctx)
	require.NoError(t, err)
	require.False(t, sess.ViewForcedAsUser)
}

func TestRestore(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		s, _, kv := newStoreWithMocks(t)
		kv.EXPECT().Get(gomock.Any(), storage.SessionKey).Return(nil, storage.ErrNotFound)

		_, ok := s.Restore(context.Background())
		require.False(t, ok)
	})

	t.Run("corrupt is dropped", func(t *testing.T) {
		s, _, kv := newStoreWithMocks(t)
		kv.EXPECT().Get(gomock.Any(), storage.SessionKey).Return([]byte("{not json"), nil)
		kv.EXPECT().Delete(gomock.Any(), storage.SessionKey).Return(nil)

		_, ok := s.Restore(context.Background())
		require.False(t, ok)
	})

	t.Run("admin snapshot", func(t *testing.T) {
		s, _, kv := newStoreWithMocks(t)
		kv.EXPECT().Get(gomock.Any(), storage.SessionKey).
			Return([]byte(`{"profile":{"id":"admin-daniel_herrera","username":"daniel_herrera","points":9999,"status":"active"}}`), nil)

		sess, ok := s.Restore(context.Background())
		require.True(t, ok)
		require.Equal(t, models.SessionEphemeral, sess.Kind)
		require.True(t, sess.IsRealAdmin)
	})
}

func TestLogout(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)
	ctx := context.Background()

	mp.EXPECT().ProfileByUsername(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
	kv.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err := s.Login(ctx, "harold_anguiano", "123_admin")
	require.NoError(t, err)
	_, err = s.ToggleViewAsUser(ctx)
	require.NoError(t, err)

	kv.EXPECT().Delete(gomock.Any(), storage.SessionKey).Return(nil)
	s.Logout(ctx)

	_, ok := s.Current()
	require.False(t, ok)
	require.False(t, s.IsAdminAuthorized())
}

func TestMirrorPoints(t *testing.T) {
	s, mp, kv := newStoreWithMocks(t)
	ctx := context.Background()

	mp.EXPECT().ProfileByCredentials(gomock.Any(), "alice", "p").
		Return(&models.Profile{ID: "a", Username: "alice", Points: 42, Status: models.ProfileActive}, nil)
	kv.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)

	_, err := s.Login(ctx, "alice", "p")
	require.NoError(t, err)

	s.MirrorPoints(ctx, "a", 52)
	s.MirrorPoints(ctx, "someone-else", 1000)

	sess, _ := s.Current()
	require.Equal(t, 52, sess.Profile.Points)
}

func TestRoster_Hash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	r := NewRoster([]config.AdminConfig{
		{Username: "Root", PasswordHash: string(hash)},
		{Username: "plain", Password: "x", DisplayName: "Plain"},
	})

	_, ok := r.Verify("root", "s3cret")
	require.True(t, ok)

	_, ok = r.Verify("root", "wrong")
	require.False(t, ok)

	a, ok := r.Verify("PLAIN", "x")
	require.True(t, ok)
	require.Equal(t, "Plain", a.DisplayName)

	require.True(t, r.IsAdmin("root"))
	require.False(t, r.IsAdmin("alice"))
}
