package service

// PasswordService hashes and checks passwords. Both calls are CPU bound and
// may take tens of milliseconds at the default cost.
type PasswordService interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (ok bool, err error)
}
