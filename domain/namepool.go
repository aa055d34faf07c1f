package domain

// namePool is the curated list of display names handed out when a client
// registers without one. Names come from the Book of Songs and other
// Chinese classics; collisions between connections are allowed.
var namePool = []string{
	"子衿", "伯兮", "卫庄", "子车", "子仲", "子鱼", "子文", "子游", "子羽", "子产",
	"子路", "子贡", "子夏", "子张", "子禽", "子西", "子期", "子舆", "子桑", "子牵",
	"孔丘", "颜回", "曾参", "冉求", "宓不齐", "原宪", "仲由", "卜商", "澹台灭明", "宰予",
	"端木赐", "言偃", "卞庄子", "荀况", "孟轲", "庄周", "惠施", "韩非", "李斯", "吕不韦",
	"屈原", "宋玉", "贾谊", "司马迁", "扁鹊", "华佗", "张仲景", "孙思邈", "李时珍", "关羽",
	"张飞", "赵云", "马超", "黄忠", "魏延", "姜维", "庞统", "诸葛亮", "司马懿", "曹操",
	"孙权", "刘备", "周瑜", "鲁肃", "陆逊", "吕蒙", "甘宁", "太史慈", "黄盖", "韩当",
	"林冲", "鲁智深", "武松", "李逵", "宋江", "卢俊义", "吴用", "公孙胜", "燕青", "石秀",
	"贾宝玉", "林黛玉", "薛宝钗", "王熙凤", "史湘云", "妙玉", "贾元春", "贾探春", "贾惜春", "贾迎春",
	"秦少游", "李清照", "辛弃疾", "苏轼", "柳永", "欧阳修", "范仲淹", "岳飞", "文天祥", "陆游",
}

// PickName returns a uniformly chosen name from the pool.
// intn must behave like rand.Intn; it is injected so callers can make
// the choice deterministic in tests.
func PickName(intn func(n int) int) string {
	return namePool[intn(len(namePool))]
}

func NamePoolSize() int {
	return len(namePool)
}
