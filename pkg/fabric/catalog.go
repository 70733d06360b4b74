package fabric

// Static catalog data: testbed sites, component models, and OS images.
// Sourced from the control framework's public inventory; availability numbers
// come from ListSites at runtime, this file only carries the fixed facts.

// Site is one testbed site with location and capacity.
type Site struct {
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	State         string  `json:"state"`
	Hosts         int     `json:"hosts"`
	CoresFree     int     `json:"cores_available"`
	CoresCapacity int     `json:"cores_capacity"`
	RAMFree       int     `json:"ram_available"`
	RAMCapacity   int     `json:"ram_capacity"`
}

// SiteLocations maps site names to GPS coordinates for map display.
var SiteLocations = map[string][2]float64{
	"AMST":   {52.3545, 4.9558},
	"ATLA":   {33.7586, -84.3877},
	"BRIST":  {51.4571, -2.6073},
	"CERN":   {46.2339, 6.0470},
	"CIEN":   {45.4215, -75.6972},
	"CLEM":   {34.5865, -82.8213},
	"DALL":   {32.7991, -96.8207},
	"EDC":    {40.0958, -88.2415},
	"EDUKY":  {38.0325, -84.5028},
	"FIU":    {25.7543, -80.3703},
	"GATECH": {33.7754, -84.3875},
	"GPN":    {39.0343, -94.5826},
	"HAWI":   {21.2990, -157.8164},
	"INDI":   {39.7737, -86.1675},
	"KANS":   {39.1005, -94.5823},
	"LOSA":   {34.0491, -118.2595},
	"MASS":   {42.2025, -72.6079},
	"MAX":    {38.9886, -76.9435},
	"MICH":   {42.2931, -83.7101},
	"NCSA":   {40.0958, -88.2415},
	"NEWY":   {40.7384, -73.9992},
	"PRIN":   {40.3461, -74.6161},
	"PSC":    {40.4344, -79.7502},
	"RUTG":   {40.5225, -74.4406},
	"SALT":   {40.7571, -111.9535},
	"SEAT":   {47.6144, -122.3389},
	"SRI":    {37.4566, -122.1747},
	"STAR":   {42.2360, -88.1575},
	"TACC":   {30.3899, -97.7262},
	"TOKY":   {35.7115, 139.7641},
	"UCSD":   {32.8887, -117.2393},
	"UTAH":   {40.7504, -111.8938},
	"WASH":   {38.9209, -77.2112},
}

// ComponentModel describes one attachable hardware model.
type ComponentModel struct {
	Model       string `json:"model"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Ports       int    `json:"ports"` // network attachment points per unit
}

// ComponentModels is the catalog of attachable components.
var ComponentModels = []ComponentModel{
	{"NIC_Basic", "SmartNIC", "Basic 100Gbps NIC", 1},
	{"NIC_ConnectX_5", "SmartNIC", "Mellanox ConnectX-5 25Gbps", 2},
	{"NIC_ConnectX_6", "SmartNIC", "Mellanox ConnectX-6 100Gbps", 2},
	{"NIC_ConnectX_7", "SmartNIC", "Mellanox ConnectX-7 100Gbps", 2},
	{"GPU_TeslaT4", "GPU", "NVIDIA Tesla T4", 0},
	{"GPU_RTX6000", "GPU", "NVIDIA RTX 6000", 0},
	{"GPU_A30", "GPU", "NVIDIA A30", 0},
	{"GPU_A40", "GPU", "NVIDIA A40", 0},
	{"FPGA_Xilinx_U280", "FPGA", "Xilinx Alveo U280", 2},
	{"NVME_P4510", "Storage", "Intel P4510 NVMe", 0},
}

// LookupModel returns the catalog entry for a model name, or nil.
func LookupModel(model string) *ComponentModel {
	for i := range ComponentModels {
		if ComponentModels[i].Model == model {
			return &ComponentModels[i]
		}
	}
	return nil
}

// DefaultImage is used when a node spec names no image.
const DefaultImage = "default_ubuntu_22"

// Images is the catalog of available OS images.
var Images = []string{
	"default_ubuntu_22",
	"default_ubuntu_24",
	"default_ubuntu_20",
	"default_centos_8",
	"default_centos_9",
	"default_rocky_8",
	"default_rocky_9",
	"default_debian_11",
	"default_debian_12",
}

// ImageUsername returns the login user a given image provisions.
func ImageUsername(image string) string {
	switch {
	case len(image) >= 14 && image[:14] == "default_ubuntu":
		return "ubuntu"
	case len(image) >= 14 && image[:14] == "default_centos":
		return "centos"
	case len(image) >= 13 && image[:13] == "default_rocky":
		return "rocky"
	case len(image) >= 14 && image[:14] == "default_debian":
		return "debian"
	default:
		return "root"
	}
}
