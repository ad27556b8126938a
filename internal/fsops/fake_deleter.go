package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls; paths listed in Fail return the mapped error
// and are recorded with a "fail:" prefix
type FakeDeleter struct {
	Calls []string
	Fail  map[string]error
	Next  Deleter // optional, performs the delete after recording
}

// Remove records path and fails it when listed in Fail
func (f *FakeDeleter) Remove(path string) error {
	if err, ok := f.Fail[path]; ok {
		f.Calls = append(f.Calls, "fail:"+path)
		return err
	}
	f.Calls = append(f.Calls, "rm:"+path)
	if f.Next != nil {
		return f.Next.Remove(path)
	}
	return nil
}
