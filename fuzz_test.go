package fat32

import "testing"

// FuzzFS drives a sequence of directory/file operations, encoded as 64-bit
// opcodes, against an in-memory volume, the same virtual-machine-style
// fuzzing approach as the reference codebase's FuzzFS (fuzz_test.go):
// low bits select the operation, the next bits select which of a small
// pool of names it targets, and the high bits size any data read/written.
func FuzzFS(f *testing.F) {
	const (
		opCreateFile uint64 = iota
		opWriteOverwrite
		opWriteAppend
		opRead
		opDeleteFile
		opCreateDir
		opCd
		opDeleteDir

		whoOff      = 4
		datasizeOff = 16
	)
	names := [4]string{"a.txt", "b.txt", "c.txt", "d.txt"}
	dirs := [4]string{"one", "two", "three", "four"}
	writeData := make([]byte, 1<<12)
	for i := range writeData {
		writeData[i] = byte(i)
	}
	readData := make([]byte, 1<<12)

	f.Add(opCreateFile, opWriteOverwrite|(100<<datasizeOff), opRead,
		opCreateDir, opCd|(1<<whoOff), opCreateFile|(1<<whoOff),
		opDeleteFile, opCd, opDeleteDir|(1<<whoOff))

	f.Fuzz(func(t *testing.T, ops0, ops1, ops2, ops3, ops4, ops5, ops6, ops7, ops8 uint64) {
		vol := formatTestVolume(t, 8000)
		cur := vol.RootDir()
		ops := [...]uint64{ops0, ops1, ops2, ops3, ops4, ops5, ops6, ops7, ops8}
		for _, op := range ops {
			code := op & 0xf
			who := int((op >> whoOff) & 0xf)
			datasize := int((op >> datasizeOff) & 0xfff)
			switch code {
			case opCreateFile:
				_ = cur.CreateFile(names[who%len(names)])
			case opWriteOverwrite:
				if datasize > len(writeData) {
					datasize = len(writeData)
				}
				file, err := cur.OpenFile(names[who%len(names)])
				if err == nil {
					_ = file.Write(writeData[:datasize], Overwrite)
				}
			case opWriteAppend:
				if datasize > len(writeData) {
					datasize = len(writeData)
				}
				file, err := cur.OpenFile(names[who%len(names)])
				if err == nil {
					_ = file.Write(writeData[:datasize], Append)
				}
			case opRead:
				file, err := cur.OpenFile(names[who%len(names)])
				if err == nil && file.Len() <= uint32(len(readData)) {
					_, _ = file.Read(readData[:file.Len()])
				}
			case opDeleteFile:
				_ = cur.DeleteFile(names[who%len(names)])
			case opCreateDir:
				_ = cur.CreateDir(dirs[who%len(dirs)])
			case opCd:
				if next, err := cur.Cd(dirs[who%len(dirs)]); err == nil {
					cur = next
				} else {
					cur = vol.RootDir()
				}
			case opDeleteDir:
				_ = cur.DeleteDir(dirs[who%len(dirs)])
			}
		}
	})
}
