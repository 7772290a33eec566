package git

// Compile-time check that MockRepository implements Repository.
var _ Repository = (*MockRepository)(nil)

// MockRepository is a configurable mock implementation of Repository for testing.
// Each method is backed by a function field. If the function field is nil,
// the method returns sensible zero values.
type MockRepository struct {
	PathFunc                func() string
	WorkingDirectoryFunc    func() string
	HeadShaFunc             func() (string, error)
	ResolveReferenceFunc    func(string) (string, error)
	TagsFunc                func() ([]Tag, error)
	CommitLogFunc           func(string, string, bool) ([]Commit, error)
	FindCommitByMessageFunc func(string) (Commit, bool, error)
	CreateTagFunc           func(string, string) error
	CommitAuthorFunc        func(string) (string, error)
	SubmoduleCommitsFunc    func(string) (string, string, error)
	OpenSubmoduleFunc       func(string) (Repository, error)
	DescribeFunc            func(string) (string, error)
}

func (m *MockRepository) Path() string {
	if m.PathFunc != nil {
		return m.PathFunc()
	}
	return ""
}

func (m *MockRepository) WorkingDirectory() string {
	if m.WorkingDirectoryFunc != nil {
		return m.WorkingDirectoryFunc()
	}
	return ""
}

func (m *MockRepository) HeadSha() (string, error) {
	if m.HeadShaFunc != nil {
		return m.HeadShaFunc()
	}
	return "", nil
}

// ResolveReference reports every name as missing unless overridden.
func (m *MockRepository) ResolveReference(name string) (string, error) {
	if m.ResolveReferenceFunc != nil {
		return m.ResolveReferenceFunc(name)
	}
	return "", ErrReferenceNotFound
}

func (m *MockRepository) Tags() ([]Tag, error) {
	if m.TagsFunc != nil {
		return m.TagsFunc()
	}
	return nil, nil
}

func (m *MockRepository) CommitLog(from, to string, includeMerges bool) ([]Commit, error) {
	if m.CommitLogFunc != nil {
		return m.CommitLogFunc(from, to, includeMerges)
	}
	return nil, nil
}

func (m *MockRepository) FindCommitByMessage(message string) (Commit, bool, error) {
	if m.FindCommitByMessageFunc != nil {
		return m.FindCommitByMessageFunc(message)
	}
	return Commit{}, false, nil
}

func (m *MockRepository) CreateTag(name, sha string) error {
	if m.CreateTagFunc != nil {
		return m.CreateTagFunc(name, sha)
	}
	return nil
}

func (m *MockRepository) CommitAuthor(sha string) (string, error) {
	if m.CommitAuthorFunc != nil {
		return m.CommitAuthorFunc(sha)
	}
	return "", nil
}

func (m *MockRepository) SubmoduleCommits(path string) (string, string, error) {
	if m.SubmoduleCommitsFunc != nil {
		return m.SubmoduleCommitsFunc(path)
	}
	return "", "", nil
}

func (m *MockRepository) OpenSubmodule(path string) (Repository, error) {
	if m.OpenSubmoduleFunc != nil {
		return m.OpenSubmoduleFunc(path)
	}
	return &MockRepository{}, nil
}

func (m *MockRepository) Describe(sha string) (string, error) {
	if m.DescribeFunc != nil {
		return m.DescribeFunc(sha)
	}
	return "", ErrNoTag
}
