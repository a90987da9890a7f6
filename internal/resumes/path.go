package resumes

import (
	"strconv"
	"time"

	"resume-uploads/internal/shared/util"
)

// StoragePath builds the blob key {owner}/{unixMillis}_{fileName}. One owner
// uploading the same name twice in the same millisecond yields the same key;
// blob stores refuse to overwrite, so the second upload fails at Put.
func StoragePath(ownerID string, at time.Time, fileName string) string {
	return util.PathSegment(ownerID) + "/" + strconv.FormatInt(at.UnixMilli(), 10) + "_" + util.PathSegment(fileName)
}
