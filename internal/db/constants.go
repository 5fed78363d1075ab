package db

// timeLayout is how timestamps are stored; it sorts lexically.
const timeLayout = "2006-01-02 15:04:05.000"

// MemoryPath opens a journal that lives only as long as the process.
const MemoryPath = ":memory:"
