package std

// Text processing.
var (
	Awk    = cmd("awk")
	Cat    = cmd("cat")
	Column = cmd("column")
	Comm   = cmd("comm")
	Cut    = cmd("cut")
	Diff   = cmd("diff")
	Egrep  = cmd("egrep")
	Expand = cmd("expand")
	Fgrep  = cmd("fgrep")
	Fmt    = cmd("fmt")
	Fold   = cmd("fold")
	Grep   = cmd("grep")
	Head   = cmd("head")
	Join   = cmd("join")
	Nl     = cmd("nl")
	Paste  = cmd("paste")
	Rev    = cmd("rev")
	Sed    = cmd("sed")
	Seq    = cmd("seq")
	Shuf   = cmd("shuf")
	Sort   = cmd("sort")
	Split  = cmd("split")
	Tac    = cmd("tac")
	Tail   = cmd("tail")
	Tee    = cmd("tee")
	Tr     = cmd("tr")
	Uniq   = cmd("uniq")
	Wc     = cmd("wc")
	Xargs  = cmd("xargs")
	Yes    = cmd("yes")
)

// Compression and encoding.
var (
	Base32  = cmd("base32")
	Base64  = cmd("base64")
	Bzcat   = cmd("bzcat")
	Bzip2   = cmd("bzip2")
	Gunzip  = cmd("gunzip")
	Gzip    = cmd("gzip")
	Md5sum  = cmd("md5sum")
	Sha1sum = cmd("sha1sum")
	Sha256  = cmd("sha256sum")
	Tar     = cmd("tar")
	Xz      = cmd("xz")
	Xzcat   = cmd("xzcat")
	Zcat    = cmd("zcat")
	Zstd    = cmd("zstd")
	Zstdcat = cmd("zstdcat")
)

// Files and the system.
var (
	Basename = cmd("basename")
	Chmod    = cmd("chmod")
	Cp       = cmd("cp")
	Date     = cmd("date")
	Dirname  = cmd("dirname")
	Du       = cmd("du")
	Echo     = cmd("echo")
	Env      = cmd("env")
	False    = cmd("false")
	File     = cmd("file")
	Find     = cmd("find")
	Hostname = cmd("hostname")
	Ls       = cmd("ls")
	Mkdir    = cmd("mkdir")
	Mv       = cmd("mv")
	Printf   = cmd("printf")
	Pwd      = cmd("pwd")
	Rm       = cmd("rm")
	Sh       = cmd("sh")
	Sleep    = cmd("sleep")
	Stat     = cmd("stat")
	Touch    = cmd("touch")
	True     = cmd("true")
	Uname    = cmd("uname")
	Which    = cmd("which")
)

// Network and tooling.
var (
	Curl   = cmd("curl")
	Git    = cmd("git")
	Jq     = cmd("jq")
	Make   = cmd("make")
	Python = cmd("python3")
	Rsync  = cmd("rsync")
	Ssh    = cmd("ssh")
	Wget   = cmd("wget")
)
